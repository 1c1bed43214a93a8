package provider

import (
	"net/url"
)

// Credentials are the authentication fields merged into every request's query
// string. Three shapes exist:
//
//   - an OAuth access token:          ?access_token=...              (GitHub)
//   - an OAuth app id/secret pair:    ?client_id=...&client_secret=...  (GitHub)
//   - a personal private token:       ?private_token=...             (GitLab)
//
// For GitHub the choice is a deployment setting (config.CredentialMode);
// GitLabClient takes a PrivateTokenCredentials.
type Credentials interface {
	Values() url.Values
}

// TokenCredentials authenticate as the user who granted the token.
type TokenCredentials struct {
	AccessToken string
}

// Values implements Credentials.
func (c TokenCredentials) Values() url.Values {
	return url.Values{"access_token": {c.AccessToken}}
}

// AppCredentials authenticate as the registered OAuth application.
type AppCredentials struct {
	ClientID     string
	ClientSecret string
}

// Values implements Credentials.
func (c AppCredentials) Values() url.Values {
	return url.Values{
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}
}

// PrivateTokenCredentials authenticate against GitLab with a personal token.
type PrivateTokenCredentials struct {
	Token string
}

// Values implements Credentials.
func (c PrivateTokenCredentials) Values() url.Values {
	return url.Values{"private_token": {c.Token}}
}

// AddQuery appends credentials and extra parameters to base as a query string.
//
// Credential fields always win: if extra carries a key that the credentials
// also set, the credential value is used. extra is not modified.
// An empty base yields "" (there is nothing to request).
func AddQuery(base string, creds Credentials, extra url.Values) string {
	if base == "" {
		return ""
	}

	query := url.Values{}
	for key, values := range extra {
		query[key] = append([]string(nil), values...)
	}
	if creds != nil {
		for key, values := range creds.Values() {
			query[key] = append([]string(nil), values...)
		}
	}

	// Encode sorts keys, which keeps URLs stable for logging and tests.
	return base + "?" + query.Encode()
}
