package domain

type SessionMode int

const (
	Guest SessionMode = iota
	Authenticated
)

func (m SessionMode) String() string {
	if m == Authenticated {
		return "authenticated"
	}
	return "guest"
}

// User is the identity handed over by the auth flow. Only ID matters here.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
