package repo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// RootOwnedSeparator splits the expanded template into an administrator-owned
// prefix and a user-owned suffix.
const RootOwnedSeparator = "//"

// ExpandTemplate substitutes the documented placeholders with values from the
// expansion context. Unknown placeholders pass through unchanged.
func ExpandTemplate(template string, ectx domain.ExpansionContext) string {
	replacer := strings.NewReplacer(
		"%user%", ectx.User,
		"%userId%", strconv.FormatInt(ectx.UserID, 10),
		"%group%", ectx.Group,
		"%groupId%", strconv.FormatInt(ectx.GroupID, 10),
		"%year%", fmt.Sprintf("%04d", ectx.Now.Year()),
		"%month%", fmt.Sprintf("%02d", int(ectx.Now.Month())),
		"%monthname%", ectx.Now.Month().String(),
		"%day%", fmt.Sprintf("%02d", ectx.Now.Day()),
		"%time%", ectx.Now.Format("15-04-05.000"),
		"%session%", ectx.Session,
		"%sessionId%", strconv.FormatInt(ectx.SessionID, 10),
		"%eventId%", strconv.FormatInt(ectx.EventID, 10),
		"%perms%", ectx.Perms,
	)
	return replacer.Replace(template)
}

// SplitRootOwned separates the root-owned prefix from the user-owned suffix.
// Without a double separator the whole template belongs to the user.
func SplitRootOwned(expanded string) (rootPart, userPart string) {
	if i := strings.Index(expanded, RootOwnedSeparator); i >= 0 {
		return strings.Trim(expanded[:i], "/"), strings.Trim(expanded[i+len(RootOwnedSeparator):], "/")
	}
	return "", strings.Trim(expanded, "/")
}
