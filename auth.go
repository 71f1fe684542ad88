package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenExpiry     = 24 * time.Hour
	bcryptCost      = 10
	maxPasscodeLen  = 32
	joinRateWindow  = 60 * time.Second
	maxJoinAttempts = 10
)

var (
	ErrBadPasscode = errors.New("wrong passcode")
	ErrBadToken    = errors.New("invalid room token")
	ErrRateLimited = errors.New("too many join attempts, try again later")
)

// Relay slot names carried in tokens and in joined replies
const (
	SlotHost  = "host"
	SlotGuest = "guest"
)

// RoomClaims identify a participant of a room
type RoomClaims struct {
	Room string
	Slot string
	Name string
}

// Auth issues rejoin tokens and checks room passcodes
type Auth struct {
	jwtSecret []byte

	// Rate limiting for passcode attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates an Auth whose signing secret survives relay restarts when
// db is set
func NewAuth(db *DB) *Auth {
	return &Auth{
		jwtSecret: loadOrCreateSecret(db),
		rateMap:   make(map[string]*rateEntry),
	}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting("jwt_secret"); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
			log.Printf("warning: could not persist JWT secret: %v", err)
		}
	}
	return secret
}

// HashPasscode hashes a room passcode; an empty passcode means an open room
func HashPasscode(passcode string) ([]byte, error) {
	if passcode == "" {
		return nil, nil
	}
	if len(passcode) > maxPasscodeLen {
		return nil, fmt.Errorf("passcode must be at most %d characters", maxPasscodeLen)
	}
	return bcrypt.GenerateFromPassword([]byte(passcode), bcryptCost)
}

// CheckPasscode verifies passcode against a room's hash, rate limited per ip
func (a *Auth) CheckPasscode(hash []byte, passcode, ip string) error {
	if len(hash) == 0 {
		return nil
	}
	if !a.checkRate(ip) {
		return ErrRateLimited
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(passcode)); err != nil {
		return ErrBadPasscode
	}
	return nil
}

// IssueToken signs a rejoin token for one slot of a room
func (a *Auth) IssueToken(c RoomClaims) (string, error) {
	claims := jwt.MapClaims{
		"room": c.Room,
		"slot": c.Slot,
		"name": c.Name,
		"exp":  time.Now().Add(tokenExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken checks a rejoin token and returns its claims
func (a *Auth) ValidateToken(tokenStr string) (RoomClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return RoomClaims{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return RoomClaims{}, ErrBadToken
	}
	room, _ := claims["room"].(string)
	slot, _ := claims["slot"].(string)
	name, _ := claims["name"].(string)
	if room == "" || (slot != SlotHost && slot != SlotGuest) {
		return RoomClaims{}, ErrBadToken
	}
	return RoomClaims{Room: room, Slot: slot, Name: name}, nil
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(joinRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxJoinAttempts
}

// GenerateGuestName creates a name like "Guest_a3f2c1" for peers that send none
func GenerateGuestName() string {
	return "Guest_" + GenerateID(3)
}
