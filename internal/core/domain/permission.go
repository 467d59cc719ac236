package domain

// Authorization decisions over already-loaded data. They never touch the store;
// services load the inputs and call these.

// CanCreateUserWithRole reports whether targetRole is one of the roles the
// acting role may hand out.
func CanCreateUserWithRole(childRoles []string, targetRole string) bool {
	for _, r := range childRoles {
		if r == targetRole {
			return true
		}
	}
	return false
}

// CanManageOtherUser is true only for the direct manager of target.
// Grandparents and further ancestors are deliberately excluded.
func CanManageOtherUser(actingID uint, targetManagerID *uint, targetExists bool) bool {
	if !targetExists || targetManagerID == nil {
		return false
	}
	return *targetManagerID == actingID
}

// ProvisionedName is the part of a location node the location check needs.
type ProvisionedName struct {
	Name        string
	ParentsCode string
}

// CanCreateLocationUnder reports whether a node named `name` was provisioned
// directly under the acting user's managed location.
func CanCreateLocationUnder(manageLocation, name string, candidates []ProvisionedName) bool {
	for _, c := range candidates {
		if c.Name == name && c.ParentsCode == manageLocation {
			return true
		}
	}
	return false
}
