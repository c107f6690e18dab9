// Package persona defines the agent personas the bot speaks through
// when a conversation moves to a named team (sales, billing, order
// tracking, customer care). The directory maps roles to the persona ids
// registered on the page, so handlers can attach the right face to a
// reply without talking to the Graph API themselves.
package persona

// Role identifies which team a persona fronts.
type Role string

const (
	RoleSales   Role = "sales"
	RoleBilling Role = "billing"
	RoleOrder   Role = "order"
	RoleCare    Role = "care"
)

// Persona is an agent identity registered on the page.
type Persona struct {
	Role              Role
	Name              string
	ID                string
	ProfilePictureURL string
}

// Directory resolves a role to its registered persona. Lookups for a
// role that has not been provisioned return a zero Persona; senders
// treat an empty ID as "send without persona".
type Directory interface {
	Lookup(role Role) Persona
}

// Defaults returns the persona catalog for a deployment, with profile
// pictures served from the app's public asset directory. IDs are filled
// in after registration with the page.
func Defaults(appURL string) []Persona {
	return []Persona{
		{Role: RoleSales, Name: "Jorge", ProfilePictureURL: appURL + "/personas/sales.jpg"},
		{Role: RoleBilling, Name: "Laura", ProfilePictureURL: appURL + "/personas/billing.jpg"},
		{Role: RoleOrder, Name: "Riandy", ProfilePictureURL: appURL + "/personas/order.jpg"},
		{Role: RoleCare, Name: "Daniel", ProfilePictureURL: appURL + "/personas/care.jpg"},
	}
}

// StaticDirectory is a fixed role table, used in tests and as the
// fallback before persona registration completes.
type StaticDirectory map[Role]Persona

// Lookup implements Directory.
func (d StaticDirectory) Lookup(role Role) Persona {
	return d[role]
}
