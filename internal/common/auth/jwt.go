package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/config"
	"github.com/golang-jwt/jwt/v5"
)

// token 用途（typ claim）。签名相同但用途不同的 token 互不可用：
// 登录 session 不能用于扫码入场，入场码也不能当作 API 凭证。
const (
	TokenTypeSession = "session"
	TokenTypeCheckIn = "qr_checkin"
)

var (
	// ErrTokenInvalid 签名错误 / 格式错误 / typ 不匹配
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired 已过期
	ErrTokenExpired = errors.New("token expired")
)

type Claims struct {
	TokenType string   `json:"typ"`
	Roles     []string `json:"roles,omitempty"`
	Email     string   `json:"email,omitempty"`
	BookingID string   `json:"booking_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken 生成 API 访问用 HS256 session token。
func GenerateSessionToken(cfg config.AuthConfig, userID, email string, roles []string, ttl time.Duration) (token string, expiresAt time.Time, err error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("subject is empty")
	}
	if ttl <= 0 {
		ttl = cfg.SessionTTL()
	}
	return sign(cfg, Claims{
		TokenType: TokenTypeSession,
		Roles:     roles,
		Email:     email,
	}, userID, ttl)
}

// GenerateCheckInToken 生成入场二维码 token，绑定 (bookingID, userID)。
// ttl 由预约结束时间 + 宽限期推出，调用方负责计算。
func GenerateCheckInToken(cfg config.AuthConfig, bookingID, userID string, ttl time.Duration) (token string, expiresAt time.Time, err error) {
	if bookingID == "" || userID == "" {
		return "", time.Time{}, fmt.Errorf("booking_id/user_id required")
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return sign(cfg, Claims{
		TokenType: TokenTypeCheckIn,
		BookingID: bookingID,
	}, userID, ttl)
}

func sign(cfg config.AuthConfig, c Claims, subject string, ttl time.Duration) (string, time.Time, error) {
	if cfg.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("jwt_secret is empty")
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    cfg.Issuer,
		Audience:  audience(cfg.Audience),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseSessionToken 校验 session token 并返回 claims。
func ParseSessionToken(cfg config.AuthConfig, token string) (*Claims, error) {
	return parseTyped(cfg, token, TokenTypeSession)
}

// CheckInClaims 入场码携带的最小信息。
type CheckInClaims struct {
	BookingID string
	UserID    string
}

// ParseCheckInToken 校验入场二维码 token：
// - 签名 / exp / nbf（jwt/v5 默认校验）
// - typ 必须是 qr_checkin：其它用途的合法 token 一律拒绝
func ParseCheckInToken(cfg config.AuthConfig, token string) (*CheckInClaims, error) {
	c, err := parseTyped(cfg, token, TokenTypeCheckIn)
	if err != nil {
		return nil, err
	}
	if c.BookingID == "" || c.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return &CheckInClaims{BookingID: c.BookingID, UserID: c.Subject}, nil
}

func parseTyped(cfg config.AuthConfig, token, wantType string) (*Claims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is empty")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return nil, ErrTokenInvalid
	}
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, ErrTokenInvalid
	}
	if cfg.Audience != "" && !audienceContains(claims.Audience, cfg.Audience) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func audience(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, v := range aud {
		if v == want {
			return true
		}
	}
	return false
}
