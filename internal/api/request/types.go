package request

// RegisterRequest is the request body for registering a participant
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Size     string `json:"size"`
}

// RevealRequest is the request body for revealing an assignment
type RevealRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AdminLoginRequest is the request body for admin login
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// ExclusionRequest names the two participants of an exclusion pair
type ExclusionRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}
