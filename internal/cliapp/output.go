package cliapp

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"projectjs/internal/core/app"
	"projectjs/internal/data/history"
	"projectjs/internal/engine/projectfile"
	"projectjs/internal/engine/registry"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true)
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	keyStyle     = lipgloss.NewStyle().Bold(true).Width(14)
)

func printRegistry(w io.Writer, reg *registry.PackageRegistry) {
	if reg.Len() == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no packages"))
		return
	}
	reg.Each(func(pkg string, classes []string) bool {
		fmt.Fprintf(w, "%s %s\n", headingStyle.Render(pkg), mutedStyle.Render(fmt.Sprintf("(%d)", len(classes))))
		for _, class := range classes {
			loc, _ := reg.Location(class)
			fmt.Fprintf(w, "  %s  %s\n", class, mutedStyle.Render(loc))
		}
		return true
	})
}

func printProject(w io.Writer, pf *projectfile.ProjectFile, reg *registry.PackageRegistry) {
	d := pf.Descriptor()
	row := func(key, value string) {
		fmt.Fprintf(w, "%s%s\n", keyStyle.Render(key), value)
	}
	row("root", pf.RootDir())
	row("schema", d.Schema.Name+" "+d.Schema.Version)
	row("base", d.Namespace.Base)
	if pf.HasSrcDir() {
		row("srcDir", pf.SrcDir())
	} else {
		row("srcDir", mutedStyle.Render("(none)"))
	}
	row("buildDir", pf.BuildDir())
	if pf.Start() != "" {
		row("start", pf.Start())
	}
	row("classes", fmt.Sprintf("%d", len(d.Namespace.Classes())))
	row("packages", fmt.Sprintf("%d", reg.Len()))
	if deps := d.Namespace.Dependencies; deps != nil && deps.Len() > 0 {
		names := make([]string, 0, deps.Len())
		for pair := deps.Oldest(); pair != nil; pair = pair.Next() {
			names = append(names, pair.Key)
		}
		row("dependencies", strings.Join(names, ", "))
	}
	if aliases := d.Namespace.Aliases; aliases != nil && aliases.Len() > 0 {
		for pair := aliases.Oldest(); pair != nil; pair = pair.Next() {
			target, ok := reg.ResolveAlias(pair.Key)
			if !ok {
				row("alias", fmt.Sprintf("%s %s", pair.Key, failStyle.Render("(target is not a class name)")))
				continue
			}
			if _, mapped := reg.Location(target); !mapped {
				row("alias", fmt.Sprintf("%s -> %s %s", pair.Key, target, mutedStyle.Render("(unmapped)")))
				continue
			}
			row("alias", fmt.Sprintf("%s -> %s", pair.Key, target))
		}
	}
}

func printReload(w io.Writer, r app.Reload) {
	stamp := mutedStyle.Render(time.Now().Format("15:04:05"))
	if r.Err != nil {
		fmt.Fprintf(w, "%s %s %v\n", stamp, failStyle.Render("reload failed"), r.Err)
		return
	}
	fmt.Fprintf(w, "%s %s %d packages, %d classes\n", stamp, okStyle.Render("reloaded"), r.Registry.Len(), r.Registry.ClassCount())
	for _, pkg := range r.Diff.AddedPackages {
		fmt.Fprintf(w, "  + %s\n", pkg)
	}
	for _, pkg := range r.Diff.RemovedPackages {
		fmt.Fprintf(w, "  - %s\n", pkg)
	}
}

func printHistory(w io.Writer, snapshots []history.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no history"))
		return
	}
	for _, s := range snapshots {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		result := okStyle.Render("ok")
		detail := fmt.Sprintf("%d packages, %d classes, schema %s", s.PackageCount, s.ClassCount, s.DeclaredVersion)
		if s.Failed() {
			result = failStyle.Render(s.ErrorCode)
			detail = s.ErrorMessage
		}
		fmt.Fprintf(w, "%s  %s  %s  %s\n", s.Timestamp.Local().Format(time.DateTime), mutedStyle.Render(id), result, detail)
	}
}
