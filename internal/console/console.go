// Package console holds the terminal rendering helpers used by the
// interactive menu: colored status lines and tabular listings.
package console

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"chatapp-core/internal/models"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func Header(title string) {
	fmt.Println()
	color.New(color.BgBlack, color.FgCyan).Println(" " + title + " ")
}

func Success(format string, args ...any) {
	color.Green.Printf(format+"\n", args...)
}

func Info(format string, args ...any) {
	color.Cyan.Printf(format+"\n", args...)
}

func Warn(format string, args ...any) {
	color.Yellow.Printf(format+"\n", args...)
}

func Error(err error) {
	color.Red.Printf("Error: %v\n", err)
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// UserTable lists users with their global role and presence.
func UserTable(users []*models.User) {
	table := newTable([]string{"ID", "Username", "Role", "Status"})
	for _, user := range users {
		status := "offline"
		if user.Online() {
			status = "online"
		} else if last := user.LastSeen(); !last.IsZero() {
			status = "seen " + last.Format("15:04:05")
		}
		table.Append([]string{
			strconv.FormatInt(user.ID, 10),
			user.Username,
			user.Role.Label(),
			status,
		})
	}
	table.Render()
}

// ServerTable lists servers with owner and member count.
func ServerTable(servers []*models.Server) {
	table := newTable([]string{"ID", "Name", "Owner", "Members", "Channels"})
	for _, server := range servers {
		table.Append([]string{
			strconv.FormatInt(server.ID, 10),
			server.Name,
			server.OwnerUsername,
			strconv.Itoa(server.MemberCount()),
			strconv.Itoa(server.ChannelCount()),
		})
	}
	table.Render()
}

// ChannelTable lists a server's channels. Voice channels show occupancy.
func ChannelTable(channels []*models.Channel) {
	table := newTable([]string{"ID", "Name", "Kind", "Messages", "Voice"})
	for _, channel := range channels {
		voice := "-"
		if channel.Kind == models.ChannelVoice {
			voice = fmt.Sprintf("%d/%d", channel.ConnectedCount(), channel.Capacity)
			if channel.Locked() {
				voice += " (locked)"
			}
		}
		table.Append([]string{
			strconv.FormatInt(channel.ID, 10),
			channel.Name,
			channel.Kind.Label(),
			strconv.Itoa(channel.MessageCount()),
			voice,
		})
	}
	table.Render()
}

// MemberTable lists a server's members with their per-server role.
func MemberTable(server *models.Server) {
	table := newTable([]string{"ID", "Username", "Server Role"})
	for _, id := range server.MemberIDs() {
		role, _ := server.MemberRole(id)
		label := role.Label()
		if id == server.OwnerID {
			label += " (owner)"
		}
		table.Append([]string{
			strconv.FormatInt(id, 10),
			server.MemberUsername(id),
			label,
		})
	}
	table.Render()
}

// Messages prints messages in chronological order, one per line.
func Messages(messages []*models.Message) {
	if len(messages) == 0 {
		Info("No messages.")
		return
	}
	for _, message := range messages {
		if message.IsSystem() {
			color.Gray.Println(message.Format())
		} else {
			fmt.Println(message.Format())
		}
	}
}

// Timestamp renders creation times consistently across listings.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
