// Package auth is the user directory: account storage, credential checks and
// access-token issue/resolution. The rest of the server only sees identities.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tagserver/game"
	"tagserver/models"
)

// ErrEmailInUse is returned when registering with an already taken email.
var ErrEmailInUse = errors.New("email address already in use")

const (
	defaultTokenTTL = 30 * 24 * time.Hour
	// How long a resolved token stays in the Redis cache. Devices
	// re-authenticate on every reconnect, so this keeps the hot path off
	// postgres.
	tokenCacheTTL = 5 * time.Minute
)

// UserDirectory is the postgres-backed directory with a Redis token cache.
type UserDirectory struct {
	db       *gorm.DB
	rdb      *redis.Client
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewUserDirectory(db *gorm.DB, rdb *redis.Client, config models.Config, logger *zap.Logger) *UserDirectory {
	ttl := defaultTokenTTL
	if config.TokenTTLHours > 0 {
		ttl = time.Duration(config.TokenTTLHours) * time.Hour
	}
	return &UserDirectory{
		db:       db,
		rdb:      rdb,
		secret:   []byte(config.JWTSecret),
		tokenTTL: ttl,
		logger:   logger,
	}
}

// Register creates a new account with a bcrypt password hash.
func (d *UserDirectory) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Password: string(hash)}
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	d.logger.Info("Registered user", zap.Uint("user", user.ID), zap.String("name", name))
	return user, nil
}

// Authenticate resolves an identity by email and password.
func (d *UserDirectory) Authenticate(ctx context.Context, email, password string) (*models.User, bool) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, false
	}
	return &user, true
}

// GenerateAccessToken issues a signed token for the user. The token is what
// devices present on the websocket join and the admin API per request.
func (d *UserDirectory) GenerateAccessToken(user *models.User) (string, error) {
	claims := models.AccessClaims{
		UserID: user.ID,
		Name:   user.Name,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(d.tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(d.secret)
}

// UserByToken resolves an access token to the full user record, going
// through the Redis cache first.
func (d *UserDirectory) UserByToken(ctx context.Context, accessToken string) (*models.User, bool) {
	if accessToken == "" {
		return nil, false
	}

	cacheKey := "token:" + hashToken(accessToken)
	if cached, err := d.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, true
		}
	}

	claims := &models.AccessClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return d.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	var user models.User
	if err := d.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		return nil, false
	}

	if encoded, err := json.Marshal(&user); err == nil {
		if err := d.rdb.Set(ctx, cacheKey, encoded, tokenCacheTTL).Err(); err != nil {
			d.logger.Warn("Failed to cache token", zap.Error(err))
		}
	}

	return &user, true
}

// ResolveByToken adapts UserByToken to the identity interface the connection
// manager consumes.
func (d *UserDirectory) ResolveByToken(ctx context.Context, accessToken string) (game.Identity, bool) {
	user, ok := d.UserByToken(ctx, accessToken)
	if !ok {
		return nil, false
	}
	return user, true
}

// ResolveByCredentials adapts Authenticate to the identity interface.
func (d *UserDirectory) ResolveByCredentials(ctx context.Context, email, password string) (game.Identity, bool) {
	user, ok := d.Authenticate(ctx, email, password)
	if !ok {
		return nil, false
	}
	return user, true
}

// Delete removes the account. Cached token entries age out on their own.
func (d *UserDirectory) Delete(ctx context.Context, user *models.User) error {
	return d.db.WithContext(ctx).Delete(user).Error
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
