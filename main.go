package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"chatapp-core/internal/console"
	"chatapp-core/internal/hub"
	"chatapp-core/internal/identity"
	"chatapp-core/internal/jwt"
	"chatapp-core/internal/membership"
	"chatapp-core/internal/messaging"
	"chatapp-core/internal/models"
	"chatapp-core/internal/presence"
	"chatapp-core/internal/snowflake"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func setupLogger(cfg models.ConfigFile) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	// the menu owns stdout, so logs default to the file only
	if cfg.LogToFile {
		config.OutputPaths = []string{"app.log"}
	} else {
		config.OutputPaths = []string{"stderr"}
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	config.Level = level

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	sugar := logger.Sugar()
	defer logger.Sync()

	return sugar, nil
}

func readConfigFile() (models.ConfigFile, error) {
	cfg := models.ConfigFile{
		LogLevel:             "info",
		LogToFile:            true,
		SessionLifetimeHours: 24,
		TextHistoryDisplay:   20,
		VoiceHistoryDisplay:  10,
	}

	configFile, err := os.Open("config.json")
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer configFile.Close()

	bytes, err := io.ReadAll(configFile)
	if err != nil {
		return cfg, err
	}

	err = json.Unmarshal(bytes, &cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

type app struct {
	sugar    *zap.SugaredLogger
	cfg      models.ConfigFile
	users    *identity.Store
	servers  *membership.Engine
	messages *messaging.Engine
	voice    *presence.Engine
	events   *hub.Hub
	reader   *bufio.Scanner
}

// drainEvents renders whatever queued up on a subscription since the last
// prompt.
func (a *app) drainEvents(sub *hub.Subscription) {
	for {
		select {
		case event := <-sub.C:
			console.Info("* %s %s", event.Type, event.Detail)
		default:
			return
		}
	}
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.reader.Scan() {
		return ""
	}
	return strings.TrimSpace(a.reader.Text())
}

func (a *app) promptID(label string) (int64, bool) {
	raw := a.prompt(label)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		console.Warn("Not a valid id: %s", raw)
		return 0, false
	}
	return id, true
}

func seedDemoData(users *identity.Store, servers *membership.Engine) error {
	demo := []struct {
		username string
		password string
		role     models.GlobalRole
	}{
		{"admin", "admin123", models.RoleAdmin},
		{"moderator", "mod123", models.RoleModerator},
		{"user", "user123", models.RoleMember},
	}

	for _, d := range demo {
		if _, err := users.Register(identity.RegisterInput{Username: d.username, Password: d.password, Role: d.role}); err != nil {
			return err
		}
	}

	admin, err := users.UserByName("admin")
	if err != nil {
		return err
	}
	server, err := servers.CreateServer(admin, "Demo Server", "A place to try things out")
	if err != nil {
		return err
	}

	for _, name := range []string{"moderator", "user"} {
		member, err := users.UserByName(name)
		if err != nil {
			return err
		}
		if _, err := servers.JoinByInvite(member, server.InviteCode()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) run() {
	console.Header("Chat App")
	console.Info("Demo accounts: admin/admin123, moderator/mod123, user/user123")

	for {
		user, err := a.users.Current()
		if err != nil {
			if !a.authMenu() {
				return
			}
			continue
		}
		if !a.mainMenu(user) {
			return
		}
	}
}

func (a *app) authMenu() bool {
	console.Header("Welcome")
	fmt.Println("1) Login")
	fmt.Println("2) Register")
	fmt.Println("0) Exit")

	switch a.prompt("> ") {
	case "1":
		username := a.prompt("Username: ")
		password := a.prompt("Password: ")
		if _, err := a.users.Login(username, password); err != nil {
			console.Error(err)
			return true
		}
		console.Success("Logged in as %s", username)
	case "2":
		username := a.prompt("Username: ")
		password := a.prompt("Password: ")
		if _, err := a.users.Register(identity.RegisterInput{Username: username, Password: password, Role: models.RoleMember}); err != nil {
			console.Error(err)
			return true
		}
		console.Success("Registered %s, you can log in now", username)
	case "0":
		return false
	}
	return true
}

func (a *app) mainMenu(user *models.User) bool {
	console.Header("Main Menu (" + user.Username + ", " + user.Role.Label() + ")")
	fmt.Println("1) My servers")
	fmt.Println("2) Create server")
	fmt.Println("3) Join server by invite code")
	fmt.Println("4) Open server")
	fmt.Println("5) Friends")
	fmt.Println("6) Direct messages")
	fmt.Println("7) All users")
	fmt.Println("8) Logout")
	fmt.Println("0) Exit")

	switch a.prompt("> ") {
	case "1":
		console.ServerTable(a.servers.ServersOf(user))
	case "2":
		name := a.prompt("Server name: ")
		description := a.prompt("Description: ")
		server, err := a.servers.CreateServer(user, name, description)
		if err != nil {
			console.Error(err)
			return true
		}
		console.Success("Created server [%s], invite code: %s", server.Name, server.InviteCode())
	case "3":
		code := a.prompt("Invite code: ")
		server, err := a.servers.JoinByInvite(user, code)
		if err != nil {
			console.Error(err)
			return true
		}
		console.Success("Joined [%s]", server.Name)
	case "4":
		serverID, ok := a.promptID("Server id: ")
		if !ok {
			return true
		}
		server, err := a.servers.Server(serverID)
		if err != nil {
			console.Error(err)
			return true
		}
		if !server.IsMember(user.ID) {
			console.Error(models.ErrNotMember)
			return true
		}
		user.SetCurrentServer(server.ID)
		a.serverMenu(user, server)
		user.SetCurrentServer(0)
	case "5":
		a.friendsMenu(user)
	case "6":
		a.directMessageMenu(user)
	case "7":
		console.UserTable(a.users.Users())
	case "8":
		if err := a.users.Logout(); err != nil {
			console.Error(err)
		}
	case "0":
		if err := a.users.Logout(); err == nil {
			console.Info("Goodbye")
		}
		return false
	}
	return true
}

func (a *app) serverMenu(user *models.User, server *models.Server) {
	sub := a.events.Subscribe(hub.ServerTopic(server.ID))
	defer sub.Close()

	for {
		a.drainEvents(sub)
		console.Header("Server: " + server.Name)
		fmt.Println("1) Channels")
		fmt.Println("2) Members")
		fmt.Println("3) Open text channel")
		fmt.Println("4) Voice channel")
		fmt.Println("5) Server info")
		fmt.Println("6) Manage")
		fmt.Println("7) Leave server")
		fmt.Println("0) Back")

		switch a.prompt("> ") {
		case "1":
			console.ChannelTable(server.Channels())
		case "2":
			console.MemberTable(server)
		case "3":
			a.textChannelMenu(user, server)
		case "4":
			a.voiceMenu(user, server)
		case "5":
			console.Info("Name: %s", server.Name)
			console.Info("Description: %s", server.Description())
			console.Info("Owner: %s", server.OwnerUsername)
			console.Info("Created: %s", console.Timestamp(server.CreatedAt))
			console.Info("Invite code: %s", server.InviteCode())
			console.Info("Members: %d, Channels: %d", server.MemberCount(), server.ChannelCount())
		case "6":
			a.manageMenu(user, server)
		case "7":
			if err := a.servers.Leave(user, server.ID); err != nil {
				console.Error(err)
				continue
			}
			console.Success("Left [%s]", server.Name)
			return
		case "0":
			return
		}
	}
}

func (a *app) pickChannel(server *models.Server, kind models.ChannelKind) *models.Channel {
	name := a.prompt("Channel name: ")
	channel := server.FindChannelByName(name)
	if channel == nil {
		console.Warn("No channel named %s", name)
		return nil
	}
	if channel.Kind != kind {
		console.Warn("Channel %s is a %s channel", name, channel.Kind.Label())
		return nil
	}
	return channel
}

func (a *app) textChannelMenu(user *models.User, server *models.Server) {
	channel := a.pickChannel(server, models.ChannelText)
	if channel == nil {
		return
	}

	for {
		console.Header("#" + channel.Name)
		console.Messages(channel.Tail(a.cfg.TextHistoryDisplay))
		fmt.Println("1) Send message")
		fmt.Println("2) Edit message")
		fmt.Println("3) Delete message")
		fmt.Println("4) Search messages")
		fmt.Println("5) Show message ids")
		fmt.Println("0) Back")

		switch a.prompt("> ") {
		case "1":
			content := a.prompt("Message: ")
			if _, err := a.messages.SendMessage(user, server.ID, channel.ID, content); err != nil {
				console.Error(err)
			}
		case "2":
			messageID, ok := a.promptID("Message id: ")
			if !ok {
				continue
			}
			content := a.prompt("New content: ")
			if err := a.messages.EditMessage(user, server.ID, channel.ID, messageID, content); err != nil {
				console.Error(err)
				continue
			}
			console.Success("Message edited")
		case "3":
			messageID, ok := a.promptID("Message id: ")
			if !ok {
				continue
			}
			if err := a.messages.DeleteMessage(user, server.ID, channel.ID, messageID); err != nil {
				console.Error(err)
				continue
			}
			console.Success("Message deleted")
		case "4":
			keyword := a.prompt("Keyword: ")
			results, err := a.messages.SearchMessages(server.ID, channel.ID, keyword)
			if err != nil {
				console.Error(err)
				continue
			}
			found := 0
			for message := range results {
				fmt.Println(message.Format())
				found++
			}
			console.Info("%d message(s) matched", found)
		case "5":
			for _, message := range channel.Tail(a.cfg.TextHistoryDisplay) {
				fmt.Printf("%d  %s\n", message.ID, message.Format())
			}
		case "0":
			return
		}
	}
}

func (a *app) voiceMenu(user *models.User, server *models.Server) {
	channel := a.pickChannel(server, models.ChannelVoice)
	if channel == nil {
		return
	}

	for {
		console.Header("Voice: " + channel.Name)
		console.Info("Connected: %d/%d", channel.ConnectedCount(), channel.Capacity)
		console.Messages(channel.Tail(a.cfg.VoiceHistoryDisplay))
		fmt.Println("1) Join")
		fmt.Println("2) Leave")
		fmt.Println("3) Voice action (speak/mute/unmute/deafen/undeafen)")
		fmt.Println("4) Send text message")
		fmt.Println("0) Back")

		switch a.prompt("> ") {
		case "1":
			if err := a.voice.Connect(user, server.ID, channel.ID); err != nil {
				console.Error(err)
			}
		case "2":
			if err := a.voice.Disconnect(user, server.ID, channel.ID); err != nil {
				console.Error(err)
			}
		case "3":
			action := a.prompt("Action: ")
			if err := a.voice.Act(user, server.ID, channel.ID, action); err != nil {
				console.Error(err)
			}
		case "4":
			content := a.prompt("Message: ")
			if _, err := a.messages.SendMessage(user, server.ID, channel.ID, content); err != nil {
				console.Error(err)
			}
		case "0":
			return
		}
	}
}

func (a *app) manageMenu(user *models.User, server *models.Server) {
	console.Header("Manage: " + server.Name)
	fmt.Println("1) Create text channel")
	fmt.Println("2) Create voice channel")
	fmt.Println("3) Delete channel")
	fmt.Println("4) Kick user")
	fmt.Println("5) Ban user")
	fmt.Println("6) Unban user")
	fmt.Println("7) Set server role")
	fmt.Println("8) Mute user in channel")
	fmt.Println("9) Unmute user in channel")
	fmt.Println("10) Regenerate invite code")
	fmt.Println("11) Delete server")
	fmt.Println("0) Back")

	choice := a.prompt("> ")
	switch choice {
	case "1":
		name := a.prompt("Channel name: ")
		if _, err := a.messages.CreateTextChannel(user, server.ID, name); err != nil {
			console.Error(err)
			return
		}
		console.Success("Channel created")
	case "2":
		name := a.prompt("Channel name: ")
		if _, err := a.messages.CreateVoiceChannel(user, server.ID, name); err != nil {
			console.Error(err)
			return
		}
		console.Success("Channel created")
	case "3":
		channelID, ok := a.promptID("Channel id: ")
		if !ok {
			return
		}
		if err := a.messages.DeleteChannel(user, server.ID, channelID); err != nil {
			console.Error(err)
			return
		}
		console.Success("Channel deleted")
	case "4":
		target := a.prompt("Username: ")
		if err := a.servers.Kick(user, server.ID, target); err != nil {
			console.Error(err)
			return
		}
		console.Success("Kicked %s", target)
	case "5":
		target := a.prompt("Username: ")
		if err := a.servers.Ban(user, server.ID, target); err != nil {
			console.Error(err)
			return
		}
		console.Success("Banned %s", target)
	case "6":
		target := a.prompt("Username: ")
		if err := a.servers.Unban(user, server.ID, target); err != nil {
			console.Error(err)
			return
		}
		console.Success("Unbanned %s", target)
	case "7":
		target := a.prompt("Username: ")
		role := a.prompt("Role (Member/Moderator/Admin): ")
		if err := a.servers.SetRole(user, server.ID, target, role); err != nil {
			console.Error(err)
			return
		}
		console.Success("Role updated")
	case "8", "9":
		name := a.prompt("Channel name: ")
		channel := server.FindChannelByName(name)
		if channel == nil {
			console.Warn("No channel named %s", name)
			return
		}
		target := a.prompt("Username: ")
		var err error
		if choice == "8" {
			err = a.messages.MuteUser(user, server.ID, channel.ID, target)
		} else {
			err = a.messages.UnmuteUser(user, server.ID, channel.ID, target)
		}
		if err != nil {
			console.Error(err)
			return
		}
		console.Success("Done")
	case "10":
		code, err := a.servers.RegenerateInvite(user, server.ID)
		if err != nil {
			console.Error(err)
			return
		}
		console.Success("New invite code: %s", code)
	case "11":
		if a.prompt("Type the server name to confirm: ") != server.Name {
			console.Warn("Name did not match, aborting")
			return
		}
		if err := a.servers.DeleteServer(user, server.ID); err != nil {
			console.Error(err)
			return
		}
		console.Success("Server deleted")
	}
}

func (a *app) friendsMenu(user *models.User) {
	console.Header("Friends")
	console.UserTable(a.users.FriendsOf(user))
	fmt.Println("1) Add friend")
	fmt.Println("2) Remove friend")
	fmt.Println("0) Back")

	switch a.prompt("> ") {
	case "1":
		target := a.prompt("Username: ")
		if err := a.users.AddFriend(user, target); err != nil {
			console.Error(err)
			return
		}
		console.Success("You and %s are now friends", target)
	case "2":
		target := a.prompt("Username: ")
		if err := a.users.RemoveFriend(user, target); err != nil {
			console.Error(err)
			return
		}
		console.Success("Removed %s", target)
	}
}

func (a *app) directMessageMenu(user *models.User) {
	console.Header("Direct Messages")
	target := a.prompt("With user: ")
	thread, err := a.messages.DirectMessagesWith(user, target)
	if err != nil {
		console.Error(err)
		return
	}
	console.Messages(thread)

	for {
		content := a.prompt("Message (empty to go back): ")
		if content == "" {
			return
		}
		message, err := a.messages.SendDirectMessage(user, target, content)
		if err != nil {
			console.Error(err)
			return
		}
		fmt.Println(message.Format())
	}
}

func main() {
	_ = godotenv.Load()

	fmt.Println("Reading config file...")
	cfg, err := readConfigFile()
	if err != nil {
		fmt.Println(err)
		return
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JwtSecret = secret
	}
	if cfg.JwtSecret == "" {
		cfg.JwtSecret = "insecure-dev-secret"
	}

	fmt.Println("Setting up logger...")
	sugar, err := setupLogger(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}

	ids, err := snowflake.NewGenerator(cfg.SnowflakeWorkerID)
	if err != nil {
		sugar.Fatal(err)
	}

	tokens := jwt.NewManager(cfg.JwtSecret, time.Duration(cfg.SessionLifetimeHours)*time.Hour)
	events := hub.New(sugar)

	users := identity.NewStore(sugar, identity.NewBcryptAuthenticator(), tokens, ids)
	servers := membership.NewEngine(sugar, ids, users, events, cfg.DefaultVoiceCapacity)
	messages := messaging.NewEngine(sugar, ids, users, servers, events)
	voice := presence.NewEngine(sugar, ids, servers, events)

	fmt.Println("Seeding demo data...")
	if err := seedDemoData(users, servers); err != nil {
		sugar.Fatal(err)
	}

	a := &app{
		sugar:    sugar,
		cfg:      cfg,
		users:    users,
		servers:  servers,
		messages: messages,
		voice:    voice,
		events:   events,
		reader:   bufio.NewScanner(os.Stdin),
	}
	a.run()
}
