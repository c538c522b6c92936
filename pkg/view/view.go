// Package view lets any component drive the IDE panels over the bus
// without holding a reference to them.
package view

import (
	"context"
	"fmt"
	"sync"

	"pgbus/pkg/bus"
)

// Sidebar is the page shown in the sidebar.
type Sidebar string

const (
	SidebarClosed      Sidebar = "Closed"
	SidebarExplorer    Sidebar = "Explorer"
	SidebarBuildDeploy Sidebar = "Build & Deploy"
	SidebarTest        Sidebar = "Test"
	SidebarTutorials   Sidebar = "Tutorials"
	SidebarGithub      Sidebar = "Github"
	SidebarWallet      Sidebar = "Wallet"
	SidebarSettings    Sidebar = "Settings"
)

// Sidebars lists the sidebar pages in display order.
var Sidebars = []Sidebar{
	SidebarClosed,
	SidebarExplorer,
	SidebarBuildDeploy,
	SidebarTest,
	SidebarTutorials,
	SidebarGithub,
	SidebarWallet,
	SidebarSettings,
}

// MainEditor is the main view content used when none is given.
const MainEditor = "Editor"

var (
	mainNames    = bus.GetSet(bus.TopicViewMainStatic.Name())
	sidebarNames = bus.GetSet(bus.TopicViewSidebarState.Name())
	sidebarDid   = bus.TopicViewOnDidChangeSidebarState.Name()
)

// MainState is what the mounted main view reports on request.
type MainState struct {
	Mounted bool
	Content string
}

// SidebarChange is the payload of a sidebar change notification.
type SidebarChange struct {
	State Sidebar
}

// Disposable removes a listener.
type Disposable struct {
	dispose func()
}

// Dispose removes the listener. It is safe to call more than once.
func (d Disposable) Dispose() {
	if d.dispose != nil {
		d.dispose()
	}
}

// SetMain replaces the main view (next to the sidebar, above the terminal)
// with content, waiting until the main view has mounted. Empty content
// selects MainEditor.
func SetMain(ctx context.Context, b *bus.Bus, content string, policy bus.RetryPolicy) error {
	if content == "" {
		content = MainEditor
	}

	if _, err := bus.CallUntilReady[MainState](ctx, b, mainNames.Get, nil, policy); err != nil {
		return fmt.Errorf("wait for main view: %w", err)
	}

	if !bus.Emit(ctx, b, mainNames.Set, content) {
		return fmt.Errorf("set main view: %w", bus.ErrClosed)
	}
	return nil
}

// MainPanel is the provider side of the main view: it answers "get" with
// its state and applies "set" requests.
type MainPanel struct {
	mu       sync.RWMutex
	content  string
	onChange func(string)
}

// NewMainPanel starts showing MainEditor. onChange, if set, runs after each
// applied content change.
func NewMainPanel(onChange func(string)) *MainPanel {
	return &MainPanel{content: MainEditor, onChange: onChange}
}

// Content returns what the panel currently shows.
func (p *MainPanel) Content() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.content
}

// Mount attaches the panel to the bus and returns its unmount function.
func (p *MainPanel) Mount(b *bus.Bus) func() {
	unserve := bus.Serve(b, mainNames.Get, func(context.Context, any) (any, error) {
		return MainState{Mounted: true, Content: p.Content()}, nil
	})
	unset := bus.On(b, mainNames.Set, func(content string) {
		p.mu.Lock()
		p.content = content
		p.mu.Unlock()

		if p.onChange != nil {
			p.onChange(content)
		}
	})

	return func() {
		unserve()
		unset()
	}
}

// SetSidebarState asks the sidebar to show state.
func SetSidebarState(ctx context.Context, b *bus.Bus, state Sidebar) bool {
	return bus.Emit(ctx, b, sidebarNames.Set, state)
}

// OnSidebarStateSet is the sidebar side of SetSidebarState.
func OnSidebarStateSet(b *bus.Bus, fn func(Sidebar)) Disposable {
	return Disposable{dispose: bus.On(b, sidebarNames.Set, fn)}
}

// NotifySidebarChanged tells listeners the sidebar now shows state.
func NotifySidebarChanged(ctx context.Context, b *bus.Bus, state Sidebar) bool {
	return bus.Emit(ctx, b, sidebarDid, SidebarChange{State: state})
}

// OnDidChangeSidebarState runs cb after every sidebar change.
func OnDidChangeSidebarState(b *bus.Bus, cb func(Sidebar)) Disposable {
	return Disposable{dispose: bus.On(b, sidebarDid, func(change SidebarChange) {
		cb(change.State)
	})}
}
