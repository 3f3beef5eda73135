package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/keydesk/keydesk/form"
	"github.com/keydesk/keydesk/model"
	"github.com/keydesk/keydesk/service"
)

// noClient is the selector value for an unassigned key.
const noClient = ""

func stateOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.Statuses))
	for _, s := range model.Statuses {
		opts = append(opts, huh.NewOption(s.Label(), string(s)))
	}
	return opts
}

func keyTypeOptions(types []model.KeyType) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(types))
	for _, t := range types {
		opts = append(opts, huh.NewOption(t.Name, t.ID))
	}
	return opts
}

func clientOptions(clients []model.Client) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(clients)+1)
	opts = append(opts, huh.NewOption("Sin cliente", noClient))
	for _, c := range clients {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s <%s>", c.Name, c.Email), c.ID))
	}
	return opts
}

// keyFormState holds the string values bound to the form fields.
type keyFormState struct {
	Code      string
	State     string
	InitDate  string
	DueDate   string
	KeyTypeID string
	ClientID  string
}

func newKeyFormState(v form.Values) *keyFormState {
	str := func(k string) string {
		switch t := v[k].(type) {
		case string:
			return t
		case fmt.Stringer:
			return t.String()
		}
		return ""
	}
	return &keyFormState{
		Code:      str("code"),
		State:     str("state"),
		InitDate:  form.DateOnly(str("init_date")),
		DueDate:   form.DateOnly(str("due_date")),
		KeyTypeID: str("key_type_id"),
		ClientID:  str("client_id"),
	}
}

func (s *keyFormState) values() form.Values {
	return form.Values{
		"code":        s.Code,
		"state":       s.State,
		"init_date":   s.InitDate,
		"due_date":    s.DueDate,
		"key_type_id": s.KeyTypeID,
		"client_id":   s.ClientID,
	}
}

// EditKey shows the key edit form prefilled with original and returns the
// submitted values. Compute the patch with form.KeyUpdate.Diff.
func EditKey(original form.Values, lookups service.Lookups) (form.Values, error) {
	if !HasTTY {
		return nil, ErrNoTerminal
	}
	st := newKeyFormState(original)
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Código").Prompt("> ").
				Validate(fieldValidator(form.KeyUpdate, "code")).Value(&st.Code),
			huh.NewSelect[string]().Title("Estado").
				Options(stateOptions()...).Value(&st.State),
			huh.NewInput().Title("Fecha de inicio").Description("AAAA-MM-DD").Prompt("> ").
				Validate(fieldValidator(form.KeyUpdate, "init_date")).Value(&st.InitDate),
			huh.NewInput().Title("Fecha de vencimiento").Description("AAAA-MM-DD").Prompt("> ").
				Validate(fieldValidator(form.KeyUpdate, "due_date")).Value(&st.DueDate),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Tipo de key").
				Options(keyTypeOptions(lookups.KeyTypes)...).Value(&st.KeyTypeID),
			huh.NewSelect[string]().Title("Cliente").
				Options(clientOptions(lookups.Clients)...).Value(&st.ClientID),
		),
	).WithTheme(inputTheme).Run()
	if err != nil {
		return nil, err
	}
	return st.values(), nil
}
