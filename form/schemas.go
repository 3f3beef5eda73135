package form

import "github.com/keydesk/keydesk/model"

var stateRule = OneOf(model.Statuses...)

// KeyUpdate validates PATCH /keys/{id}.
var KeyUpdate = Schema{
	Name: "key",
	Fields: []Field{
		{Name: "code", Rules: []Rule{Length(1, 100)}},
		{Name: "state", Rules: []Rule{stateRule}},
		{Name: "init_date", Nullable: true, Date: true, Rules: []Rule{Date}},
		{Name: "due_date", Nullable: true, Date: true, Rules: []Rule{Date}},
		{Name: "key_type_id", Rules: []Rule{UUID}},
		{Name: "client_id", Nullable: true, Rules: []Rule{UUID}},
	},
}

// KeyCreate validates POST /keys.
var KeyCreate = Schema{
	Name: "key",
	Fields: []Field{
		{Name: "code", Required: true, Rules: []Rule{Length(1, 100)}},
		{Name: "state", Required: true, Rules: []Rule{stateRule}},
		{Name: "init_date", Required: true, Date: true, Rules: []Rule{Date}},
		{Name: "due_date", Required: true, Date: true, Rules: []Rule{Date}},
		{Name: "key_type_id", Required: true, Rules: []Rule{UUID}},
		{Name: "client_id", Nullable: true, Rules: []Rule{UUID}},
		{Name: "permissions", Rules: []Rule{UUIDs}},
	},
}

// ClientCreate validates POST /clients. Updates use ClientCreate.Partial().
var ClientCreate = Schema{
	Name: "client",
	Fields: []Field{
		{Name: "name", Required: true, Rules: []Rule{Length(1, 0)}},
		{Name: "email", Required: true, Rules: []Rule{Email}},
		{Name: "phone", Rules: []Rule{Length(0, 0)}},
	},
}

var ClientUpdate = ClientCreate.Partial()

// BatchCreate validates POST /batches. client_id may be omitted or null.
var BatchCreate = Schema{
	Name: "batch",
	Fields: []Field{
		{Name: "title", Required: true, Rules: []Rule{Length(1, 100)}},
		{Name: "quantity", Required: true, Rules: []Rule{Positive}},
		{Name: "description", Rules: []Rule{MaxLength(255)}},
		{Name: "key_type_id", Required: true, Rules: []Rule{UUID}},
		{Name: "client_id", Nullable: true, Rules: []Rule{UUID}},
	},
}

var BatchUpdate = Schema{
	Name: "batch",
	Fields: []Field{
		{Name: "title", Rules: []Rule{Length(1, 100)}},
		{Name: "description", Rules: []Rule{MaxLength(255)}},
	},
}

var KeyTypeCreate = Schema{
	Name: "key_type",
	Fields: []Field{
		{Name: "name", Required: true, Rules: []Rule{Length(1, 100)}},
		{Name: "description", Rules: []Rule{MaxLength(255)}},
		{Name: "permission_ids", Required: true, Rules: []Rule{UUIDs}},
	},
}

var KeyTypeUpdate = Schema{
	Name: "key_type",
	Fields: []Field{
		{Name: "name", Rules: []Rule{Length(1, 100)}},
		{Name: "description", Rules: []Rule{MaxLength(255)}},
	},
}

// KeyValues returns the editable fields of k as form values.
func KeyValues(k model.Key) Values {
	v := Values{
		"code":        k.Code,
		"state":       k.State,
		"init_date":   k.InitDate,
		"due_date":    k.DueDate,
		"key_type_id": k.KeyType.ID,
		"client_id":   "",
	}
	if k.Client != nil {
		v["client_id"] = k.Client.ID
	} else if k.ClientID != "" {
		v["client_id"] = k.ClientID
	}
	return v
}

func ClientValues(c model.Client) Values {
	return Values{"name": c.Name, "email": c.Email, "phone": c.Phone}
}

func BatchValues(b model.Batch) Values {
	return Values{"title": b.Title, "description": b.Description}
}

func KeyTypeValues(k model.KeyType) Values {
	return Values{"name": k.Name, "description": k.Description}
}

// Signin validates the login credentials.
var Signin = Schema{
	Name: "signin",
	Fields: []Field{
		{Name: "email", Required: true, Rules: []Rule{Email}},
		{Name: "password", Required: true, Rules: []Rule{Length(1, 0)}},
	},
}
