package entities

// AuthorizeInput carries an authorization-code request for a logged-in user
type AuthorizeInput struct {
	ClientID            string `json:"clientId" binding:"required"`
	RedirectURI         string `json:"redirectUri" binding:"required"`
	CodeChallenge       string `json:"codeChallenge" binding:"required"`
	CodeChallengeMethod string `json:"codeChallengeMethod"`
	Scopes              []string
}

// TokenExchangeInput carries a PKCE-bound code exchange
type TokenExchangeInput struct {
	Code         string `json:"code" binding:"required"`
	CodeVerifier string `json:"codeVerifier" binding:"required"`
	ClientID     string `json:"clientId" binding:"required"`
	RedirectURI  string `json:"redirectUri" binding:"required"`
}

// TokenResponse is the outcome of a successful code exchange
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IDToken     string `json:"id_token,omitempty"`
}
