package models

// AuthToken is the pair of credentials issued at login. An empty field means
// the token is absent.
type AuthToken struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

type LoginResponse struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Gender       string `json:"gender"`
	Image        string `json:"image"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Token extracts the credential pair from a login response.
func (r LoginResponse) Token() AuthToken {
	return AuthToken{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role,omitempty"`
}

// CurrentUser is the result of an authentication check: either a user or
// the explicit unauthenticated marker. It is never an error.
type CurrentUser struct {
	Authenticated bool
	User          *User
}

func Unauthenticated() CurrentUser {
	return CurrentUser{}
}

func Authenticated(u User) CurrentUser {
	return CurrentUser{Authenticated: true, User: &u}
}
