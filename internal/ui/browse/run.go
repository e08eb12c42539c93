package browse

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"projectjs/internal/engine/registry"
)

// Run shows reg until the user quits or ctx is done. Messages received on
// updates are forwarded to the view; updates may be nil.
func Run(ctx context.Context, reg *registry.PackageRegistry, updates <-chan UpdateMsg) error {
	p := tea.NewProgram(New(reg), tea.WithAltScreen(), tea.WithContext(ctx))

	if updates != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-updates:
					if !ok {
						return
					}
					p.Send(msg)
				}
			}
		}()
	}

	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
