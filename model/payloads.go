package model

// KeyCreate is the payload for POST /keys.
type KeyCreate struct {
	Code        string           `json:"code"`
	InitDate    string           `json:"init_date"`
	DueDate     string           `json:"due_date"`
	State       Status           `json:"state"`
	KeyTypeID   string           `json:"key_type_id"`
	ClientID    Optional[string] `json:"client_id,omitzero"`
	Permissions []string         `json:"permissions,omitempty"`
}

// BulkCreate is the payload for POST /keys/bulk.
type BulkCreate struct {
	Quantity int `json:"quantity"`
}

// GeneratedCode is returned by POST /keys/generate.
type GeneratedCode struct {
	Code string `json:"code"`
}

type ClientCreate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BatchCreate is the payload for POST /batches. ClientID may be absent, null
// or set.
type BatchCreate struct {
	Title       string           `json:"title"`
	Quantity    int              `json:"quantity"`
	Description string           `json:"description,omitempty"`
	KeyTypeID   string           `json:"key_type_id"`
	ClientID    Optional[string] `json:"client_id,omitzero"`
}

type KeyTypeCreate struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	PermissionIDs []string `json:"permission_ids"`
}

// PermissionChanges adds and removes permissions of a key type.
type PermissionChanges struct {
	Create []string `json:"create,omitempty"`
	Delete []string `json:"delete,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by POST /auth/login.
type AuthResponse struct {
	Token string `json:"token"`
}
