// Package topology reconstructs the implied branch tree of a repository:
// trunk resolution, parent inference, edge reconciliation against user
// intent, ahead/behind annotation and drift warnings. Everything here is
// a pure function of query results; the package holds no state between
// passes and never mutates the repository.
package topology

import "canopy/internal/model"

// conventionalTrunks are tried in order when no external signal names a
// default branch. develop outranks main: when both exist the GitFlow
// integration trunk is almost always the one feature branches fork from.
var conventionalTrunks = []string{"develop", "main", "master"}

// ResolveDefault picks the trunk branch. remoteDefault is the remote
// symbolic HEAD, hostDefault the code-host-declared default; either may
// be empty. The result is always a member of branches, except for the
// empty list where it degrades to the literal "main".
func ResolveDefault(branches []model.Branch, remoteDefault, hostDefault string) string {
	has := func(name string) bool {
		for _, b := range branches {
			if b.Name == name {
				return true
			}
		}
		return false
	}

	if remoteDefault != "" && has(remoteDefault) {
		return remoteDefault
	}
	if hostDefault != "" && has(hostDefault) {
		return hostDefault
	}
	for _, name := range conventionalTrunks {
		if has(name) {
			return name
		}
	}
	if len(branches) > 0 {
		return branches[0].Name
	}
	return "main"
}
