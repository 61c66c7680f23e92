package session

import "fmt"

// AuthResponse represents the OAuth token response
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	Signature   string `json:"signature"`
	Scope       string `json:"scope"`
	InstanceURL string `json:"instance_url"`
	ID          string `json:"id"`
	TokenType   string `json:"token_type"`
	IssuedAt    string `json:"issued_at"`
}

// OAuthErr represents an error returned by the OAuth token endpoint
// https://help.salesforce.com/articleView?id=remoteaccess_oauth_flow_errors.htm&type=5
type OAuthErr struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *OAuthErr) Error() string {
	return fmt.Sprintf("OAuth authorization error code: %s, description: %s", e.Code, e.Description)
}
