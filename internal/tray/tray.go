// Package tray provides a system tray menu for controlling particlehands.
package tray

import (
	"sync"

	"github.com/ayusman/particlehands/internal/shape"
	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle  func(enabled bool)
	onShape   func(name string)
	onExplode func()
	onPreview func()
	onQuit    func()
	enabled   bool
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuShape       *systray.MenuItem
}

// New creates a new Tray instance with detection enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback for enabling or pausing hand detection.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnShape sets the callback for picking a shape from the menu.
func (t *Tray) OnShape(fn func(name string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onShape = fn
}

// OnExplode sets the callback for the explode menu item.
func (t *Tray) OnExplode(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExplode = fn
}

// OnPreview sets the callback for the camera preview menu item.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Particles")
	systray.SetTooltip("particlehands")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	t.mu.Unlock()
	systray.AddSeparator()

	lastGesture := systray.AddMenuItem(lastGestureTitle(""), "Last detected gesture")
	lastGesture.Disable()
	shapeMenu := systray.AddMenuItem(shapeTitle(""), "Switch shape")
	t.mu.Lock()
	t.menuLastGesture = lastGesture
	t.menuShape = shapeMenu
	t.mu.Unlock()

	kinds := shape.Kinds()
	for _, k := range kinds {
		item := shapeMenu.AddSubMenuItem(k.String(), "Show "+k.String())
		name := k.String()
		go func() {
			for range item.ClickedCh {
				t.handleShape(name)
			}
		}()
	}

	menuExplode := systray.AddMenuItem("Explode", "Scatter the particles")
	menuPreview := systray.AddMenuItem("Camera Preview...", "Open the camera preview in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit particlehands")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuExplode.ClickedCh:
				t.handleExplode()
			case <-menuPreview.ClickedCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func lastGestureTitle(name string) string {
	if name == "" {
		return "Gesture: none"
	}
	return "Gesture: " + name
}

func shapeTitle(name string) string {
	if name == "" {
		return "Shape"
	}
	return "Shape: " + name
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleShape(name string) {
	t.mu.RLock()
	callback := t.onShape
	t.mu.RUnlock()

	if callback != nil {
		callback(name)
	}
	t.SetShape(name)
}

func (t *Tray) handleExplode() {
	t.mu.RLock()
	callback := t.onExplode
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handlePreview() {
	t.mu.RLock()
	callback := t.onPreview
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastGestureTitle(name))
	}
}

// SetShape updates the current shape display in the menu.
func (t *Tray) SetShape(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuShape != nil {
		t.menuShape.SetTitle(shapeTitle(name))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
