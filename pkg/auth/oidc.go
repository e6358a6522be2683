package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"

	"github.com/motoekip/catalog-service/pkg/interfaces"
)

// OIDCConfig конфигурация внешнего провайдера аутентификации
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// oidcClaims представляет собой структуру claims из ID токена
type oidcClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// OIDCClient проверяет токены покупателей, выданные внешним провайдером
type OIDCClient struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	tokenCache   *cache.Cache
	clientID     string
}

// NewOIDCClient создает новый клиент провайдера аутентификации
func NewOIDCClient(ctx context.Context, cfg OIDCConfig) (*OIDCClient, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания OIDC провайдера: %w", err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	// Кэш проверенных токенов: повторные запросы одной сессии
	// не проходят криптографическую проверку заново
	tokenCache := cache.New(5*time.Minute, 10*time.Minute)

	return &OIDCClient{
		provider:     provider,
		verifier:     verifier,
		oauth2Config: oauth2Config,
		tokenCache:   tokenCache,
		clientID:     cfg.ClientID,
	}, nil
}

// ValidateToken проверяет ID токен и возвращает claims пользователя
func (c *OIDCClient) ValidateToken(ctx context.Context, tokenString string) (*interfaces.UserClaims, error) {
	if cached, found := c.tokenCache.Get(tokenString); found {
		return cached.(*interfaces.UserClaims), nil
	}

	idToken, err := c.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("ошибка верификации токена: %w", err)
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("ошибка извлечения claims: %w", err)
	}

	userClaims := &interfaces.UserClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}

	expiresIn := time.Until(idToken.Expiry)
	if expiresIn > 0 {
		c.tokenCache.Set(tokenString, userClaims, expiresIn)
	}

	return userClaims, nil
}

// AuthURL возвращает URL для аутентификации пользователя
func (c *OIDCClient) AuthURL(state string) string {
	return c.oauth2Config.AuthCodeURL(state)
}

// ExchangeCode обменивает код авторизации на токены
func (c *OIDCClient) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.oauth2Config.Exchange(ctx, code)
}

// UserInfo получает информацию о пользователе у провайдера
func (c *OIDCClient) UserInfo(ctx context.Context, token *oauth2.Token) (*interfaces.UserClaims, error) {
	userInfo, err := c.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о пользователе: %w", err)
	}

	var claims oidcClaims
	if err := userInfo.Claims(&claims); err != nil {
		return nil, fmt.Errorf("ошибка извлечения claims: %w", err)
	}

	return &interfaces.UserClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// DisabledClient реализация AuthPort для развертываний без OIDC-провайдера:
// любой внешний токен отклоняется, доступны только гостевые сессии
type DisabledClient struct{}

// ValidateToken всегда возвращает ошибку
func (DisabledClient) ValidateToken(context.Context, string) (*interfaces.UserClaims, error) {
	return nil, errors.New("OIDC-провайдер не настроен")
}
