package identity

import (
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "chatapp-core/internal/errors"
	"chatapp-core/internal/jwt"
	"chatapp-core/internal/models"
	"chatapp-core/internal/snowflake"
	format "chatapp-core/internal/validator"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = apperrors.New(apperrors.CodeNotAuthenticated, "no user is logged in")
	ErrBadCredential    = apperrors.New(apperrors.CodeBadCredential, "invalid password")
	ErrAlreadyLoggedIn  = apperrors.New(apperrors.CodeSessionActive, "another session is already active")
	ErrUsernameTaken    = apperrors.New(apperrors.CodeUsernameTaken, "username already exists")
	ErrWeakPassword     = apperrors.New(apperrors.CodeWeakPassword, "password does not meet the policy")
	ErrInvalidUsername  = apperrors.New(apperrors.CodeInvalidInput, "username has an invalid format")
	ErrUserNotFound     = apperrors.New(apperrors.CodeUserNotFound, "user not found")
	ErrSelfFriend       = apperrors.New(apperrors.CodeSelfTarget, "you cannot add yourself as a friend")
)

// Session is the authenticated operator. Exactly one session may be active
// process-wide (single-operator model).
type Session struct {
	ID       uuid.UUID
	UserID   int64
	Token    string
	IssuedAt time.Time
}

// Store owns user records, friendships and the active session.
type Store struct {
	sugar    *zap.SugaredLogger
	auth     Authenticator
	tokens   *jwt.Manager
	ids      *snowflake.Generator
	validate *validator.Validate

	mutex   sync.RWMutex
	byName  map[string]*models.User // lowercase username -> user
	byID    map[int64]*models.User
	current *Session
}

func NewStore(sugar *zap.SugaredLogger, auth Authenticator, tokens *jwt.Manager, ids *snowflake.Generator) *Store {
	return &Store{
		sugar:    sugar,
		auth:     auth,
		tokens:   tokens,
		ids:      ids,
		validate: validator.New(),
		byName:   make(map[string]*models.User),
		byID:     make(map[int64]*models.User),
	}
}

type RegisterInput struct {
	Username string `validate:"required,max=32"`
	Password string `validate:"required"`
	Role     models.GlobalRole
}

// Register creates a user account. Usernames are unique case-insensitively.
func (s *Store) Register(input RegisterInput) (*models.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid registration input", err)
	}
	if err := format.Username(input.Username); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "username has an invalid format", err)
	}
	if err := format.Password(input.Password); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeWeakPassword, "password does not meet the policy", err)
	}

	hash, err := s.auth.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	userID, err := s.ids.Generate()
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := strings.ToLower(input.Username)
	if _, ok := s.byName[key]; ok {
		return nil, ErrUsernameTaken
	}

	user := models.NewUser(userID, input.Username, hash, input.Role, time.Now().UTC())
	s.byName[key] = user
	s.byID[userID] = user

	s.sugar.Infof("Registered user [%s] with role [%s]", user.Username, user.Role.Label())
	return user, nil
}

// Login authenticates a user and opens the process-wide session.
func (s *Store) Login(username, password string) (*Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current != nil {
		return nil, ErrAlreadyLoggedIn
	}

	user, ok := s.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}

	if err := s.auth.Verify(password, user.PasswordHash); err != nil {
		return nil, ErrBadCredential
	}

	token, err := s.tokens.Create(user.ID)
	if err != nil {
		return nil, err
	}

	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	user.SetOnline(true, time.Now().UTC())
	s.current = &Session{
		ID:       sessionID,
		UserID:   user.ID,
		Token:    token,
		IssuedAt: time.Now().UTC(),
	}

	s.sugar.Infof("User [%s] logged in, session [%s]", user.Username, sessionID)
	return s.current, nil
}

// Logout closes the active session and stamps the user's last-seen time.
func (s *Store) Logout() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current == nil {
		return ErrNotAuthenticated
	}

	if user, ok := s.byID[s.current.UserID]; ok {
		user.SetOnline(false, time.Now().UTC())
	}
	s.current = nil
	return nil
}

// Current returns the authenticated user, or ErrNotAuthenticated when no
// session is active or the session token has expired.
func (s *Store) Current() (*models.User, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current == nil {
		return nil, ErrNotAuthenticated
	}

	claims, err := s.tokens.Verify(s.current.Token)
	if err != nil {
		// expired or tampered token, drop the session
		s.sugar.Debugf("Dropping session [%s]: %v", s.current.ID, err)
		if user, ok := s.byID[s.current.UserID]; ok {
			user.SetOnline(false, time.Now().UTC())
		}
		s.current = nil
		return nil, ErrNotAuthenticated
	}

	return s.byID[claims.UserID], nil
}

func (s *Store) UserByName(username string) (*models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, ok := s.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Store) UserByID(userID int64) (*models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, ok := s.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AddFriend establishes a symmetric friendship between the actor and the
// named user.
func (s *Store) AddFriend(actor *models.User, targetUsername string) error {
	target, err := s.UserByName(targetUsername)
	if err != nil {
		return err
	}
	if target.ID == actor.ID {
		return ErrSelfFriend
	}

	actor.AddFriend(target.ID)
	target.AddFriend(actor.ID)
	return nil
}

// RemoveFriend removes the friendship on both sides. Removing a user who is
// not a friend is a no-op success.
func (s *Store) RemoveFriend(actor *models.User, targetUsername string) error {
	target, err := s.UserByName(targetUsername)
	if err != nil {
		return err
	}

	actor.RemoveFriend(target.ID)
	target.RemoveFriend(actor.ID)
	return nil
}

// FriendsOf resolves a user's friend set, sorted by username.
func (s *Store) FriendsOf(user *models.User) []*models.User {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var friends []*models.User
	for _, friendID := range user.FriendIDs() {
		if friend, ok := s.byID[friendID]; ok {
			friends = append(friends, friend)
		}
	}
	sort.Slice(friends, func(i, j int) bool {
		return strings.ToLower(friends[i].Username) < strings.ToLower(friends[j].Username)
	})
	return friends
}

// Users returns all registered users sorted by username.
func (s *Store) Users() []*models.User {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	users := make([]*models.User, 0, len(s.byID))
	for _, user := range s.byID {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
	})
	return users
}
