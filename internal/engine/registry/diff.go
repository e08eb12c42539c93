package registry

// Diff lists what changed between two registries.
type Diff struct {
	AddedPackages   []string
	RemovedPackages []string
	AddedClasses    []string
	RemovedClasses  []string
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return len(d.AddedPackages) == 0 && len(d.RemovedPackages) == 0 &&
		len(d.AddedClasses) == 0 && len(d.RemovedClasses) == 0
}

// Compare diffs next against prev. A nil prev counts as empty.
func Compare(prev, next *PackageRegistry) Diff {
	var d Diff
	prevPkgs, prevClasses := index(prev)
	nextPkgs, nextClasses := index(next)

	if next != nil {
		for _, pkg := range next.Packages() {
			if !prevPkgs[pkg] {
				d.AddedPackages = append(d.AddedPackages, pkg)
			}
		}
		for _, class := range next.Classes() {
			if !prevClasses[class] {
				d.AddedClasses = append(d.AddedClasses, class)
			}
		}
	}
	if prev != nil {
		for _, pkg := range prev.Packages() {
			if !nextPkgs[pkg] {
				d.RemovedPackages = append(d.RemovedPackages, pkg)
			}
		}
		for _, class := range prev.Classes() {
			if !nextClasses[class] {
				d.RemovedClasses = append(d.RemovedClasses, class)
			}
		}
	}
	return d
}

func index(r *PackageRegistry) (map[string]bool, map[string]bool) {
	pkgs := make(map[string]bool)
	classes := make(map[string]bool)
	if r == nil {
		return pkgs, classes
	}
	for _, pkg := range r.Packages() {
		pkgs[pkg] = true
	}
	for _, class := range r.Classes() {
		classes[class] = true
	}
	return pkgs, classes
}
