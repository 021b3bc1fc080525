package domain

// User is the profile returned by the authentication service.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Email   string `json:"email"`
	Address string `json:"direccion,omitempty"`
	Phone   string `json:"telefono,omitempty"`
}

// Session is either anonymous (no user, no token) or authenticated (both set).
type Session struct {
	User  *User
	Token string
}

func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Registration is the body accepted by the registration endpoint.
type Registration struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"direccion"`
	Phone    string `json:"telefono"`
}
