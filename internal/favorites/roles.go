package favorites

// Role selects which value Data returns for a row.
type Role int

const (
	DisplayRole Role = iota
	DecorationRole
	DescriptionRole
	FavoriteIDRole
	URLRole
	HasActionListRole
	ActionListRole
	IsDropPlaceholderRole
)

var roleNames = map[Role]string{
	DisplayRole:           "display",
	DecorationRole:        "decoration",
	DescriptionRole:       "description",
	FavoriteIDRole:        "favoriteId",
	URLRole:               "url",
	HasActionListRole:     "hasActionList",
	ActionListRole:        "actionList",
	IsDropPlaceholderRole: "isDropPlaceholder",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Roles lists every role in declaration order.
func Roles() []Role {
	return []Role{
		DisplayRole, DecorationRole, DescriptionRole, FavoriteIDRole,
		URLRole, HasActionListRole, ActionListRole, IsDropPlaceholderRole,
	}
}
