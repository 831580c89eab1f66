package media

import (
	"fmt"
	"os/exec"

	"github.com/pders01/desh/internal/config"
	"github.com/pders01/desh/internal/validation"
)

// Launcher opens article links and images in external applications.
type Launcher struct {
	browser       string
	imageViewer   string
	defaultOpener string
	registry      *Registry
	validator     *validation.URLValidator
	start         func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewRegistry()
	if err != nil {
		// Continue with bare commands if the opener table can't be loaded
		registry, _ = parseRegistry(nil)
	}
	return newLauncher(cfg, registry)
}

func newLauncher(cfg *config.Config, registry *Registry) *Launcher {
	l := &Launcher{
		defaultOpener: cfg.Media.DefaultOpener,
		registry:      registry,
		validator:     validation.NewURLValidator(),
		start:         startDetached,
	}

	var players config.MediaPlayers
	switch registry.goos {
	case "darwin":
		players = cfg.Media.Darwin
	case "windows":
		players = cfg.Media.Windows
	default:
		players = cfg.Media.Linux
	}

	l.browser = registry.FindAvailable(players.Browser)
	l.imageViewer = registry.FindAvailable(players.Image)

	if l.defaultOpener == "" {
		l.defaultOpener = platformOpener(registry.goos)
	}
	if l.browser == "" {
		l.browser = l.defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = l.browser
	}
	return l
}

func platformOpener(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

// Open opens url with the viewer for its type.
func (l *Launcher) Open(url string) error {
	if l.registry.DetectType(url) == TypeImage {
		return l.OpenImage(url)
	}
	return l.launch(l.browser, url)
}

// OpenImage opens url in the image viewer.
func (l *Launcher) OpenImage(url string) error {
	return l.launch(l.imageViewer, url)
}

func (l *Launcher) launch(opener, rawURL string) error {
	u, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open link: %w", err)
	}

	cmd, err := l.registry.Command(opener, u)
	if err != nil {
		return err
	}
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", opener, err)
	}
	return nil
}

// Start GUI applications detached
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// Openers reports the selected browser and image viewer.
func (l *Launcher) Openers() (browser, image string) {
	return l.browser, l.imageViewer
}
