package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"influencemap/api"
	"influencemap/app"
	"influencemap/engine"
	"influencemap/gazetteer"
	"influencemap/javascript"
	"influencemap/storage"
	"influencemap/typedef"

	// hideconsole
	_ "github.com/ebitengine/hideconsole"
	"github.com/hajimehoshi/ebiten/v2"
)

type options struct {
	mapPath       string
	gazetteerPath string
	scriptPath    string
	tick          time.Duration
	headless      bool
	sample        string
	apiAddr       string
}

func main() {
	var opts options
	flag.StringVar(&opts.mapPath, "map", "", "Map image to segment (PNG, JPEG, GIF, BMP, TIFF or WebP)")
	flag.StringVar(&opts.gazetteerPath, "gazetteer", "", "JSON gazetteer to resolve region names (defaults to the built-in world table)")
	flag.StringVar(&opts.scriptPath, "script", "", "JavaScript file to run against the map")
	flag.DurationVar(&opts.tick, "tick", 0, "Call the script's tick() at this interval instead of running it once")
	flag.BoolVar(&opts.headless, "headless", false, "Run in headless mode without GUI")
	flag.BoolVar(&opts.headless, "h", false, "Run in headless mode without GUI (shorthand)")
	flag.StringVar(&opts.sample, "sample", "", "Print the region under screen point x,y and exit (headless)")
	flag.StringVar(&opts.apiAddr, "api", "", "Inspection API address (overrides settings; \"off\" disables)")
	flag.Parse()

	if opts.mapPath == "" {
		if args := flag.Args(); len(args) > 0 {
			opts.mapPath = args[0]
		}
	}
	if opts.mapPath == "" {
		fmt.Fprintln(os.Stderr, "usage: influencemap -map <image> [-gazetteer file.json] [-script file.js] [-headless]")
		os.Exit(2)
	}

	lockPath := storage.DataFile(".influencemap.lock")
	lockFile, lockOwned, cleanupLock, err := prepareLock(lockPath)
	if err != nil {
		fmt.Printf("[APP] Failed to create lock file %s: %v\n", lockPath, err)
		os.Exit(1)
	}
	_ = lockFile // retained to keep handle open for lifetime
	defer cleanupLock()

	if !lockOwned {
		if opts.headless {
			fmt.Printf("[APP] Another instance holds %s\n", lockPath)
			os.Exit(1)
		}
		fmt.Println("[APP] Lock file already existed; another instance may be writing snapshots.")
	}

	settings, err := storage.LoadSettings()
	if err != nil {
		fmt.Printf("[APP] Settings unreadable, using defaults: %v\n", err)
		settings = typedef.DefaultSettings()
	}
	if opts.apiAddr == "off" {
		settings.APIAddress = ""
	} else if opts.apiAddr != "" {
		settings.APIAddress = opts.apiAddr
	}

	m, maps, err := buildMap(opts, settings)
	if err != nil {
		fmt.Printf("[APP] %v\n", err)
		os.Exit(1)
	}

	if opts.sample != "" {
		code := sample(m, opts.sample)
		m.Close()
		cleanupLock()
		os.Exit(code)
	}

	if settings.Autosave != "" {
		if n, err := app.LoadSession(m, settings.Autosave); err != nil {
			fmt.Printf("[SNAPSHOT] Autosave not restored: %v\n", err)
		} else if n > 0 {
			fmt.Printf("[SNAPSHOT] Restored %d territories from %s\n", n, settings.Autosave)
		}
	}

	cmds := app.NewCommands(256)
	server := startAPI(settings.APIAddress, cmds)

	stopScript, err := startScript(opts, settings, m, cmds)
	if err != nil {
		fmt.Printf("[SCRIPT] %v\n", err)
	}

	shutdown := func() {
		if stopScript != nil {
			stopScript()
		}
		if server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			server.Shutdown(ctx)
			cancel()
		}
	}

	if opts.headless {
		runHeadless(m, cmds, settings, opts.mapPath)
		shutdown()
		cmds.Close()
		m.Close()
		return
	}

	runWithGUI(m, maps, cmds, settings, opts.mapPath, func() {
		shutdown()
		cleanupLock()
	})
}

func prepareLock(lockPath string) (*os.File, bool, func(), error) {
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	owned := true
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			owned = false
			lockFile, err = os.OpenFile(lockPath, os.O_WRONLY, 0o644)
			if err != nil {
				return nil, false, nil, err
			}
		} else {
			return nil, false, nil, err
		}
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if lockFile != nil {
				_ = lockFile.Close()
			}
			if owned {
				os.Remove(lockPath)
			}
		})
	}

	return lockFile, owned, cleanup, nil
}

// buildMap decodes the map image and runs segmentation and identity resolution.
func buildMap(opts options, settings typedef.Settings) (*engine.Map, *app.MapManager, error) {
	maps := app.NewMapManager()
	buf, err := maps.LoadMapFile(opts.mapPath)
	if err != nil {
		return nil, nil, err
	}

	g := gazetteer.World()
	if opts.gazetteerPath != "" {
		f, err := os.Open(opts.gazetteerPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gazetteer: %w", err)
		}
		g, err = gazetteer.Load(f, gazetteer.DefaultPrecision)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load gazetteer %s: %w", opts.gazetteerPath, err)
		}
	}

	m, err := engine.New(buf, engine.ConfigFromSettings(settings, g))
	if err != nil {
		return nil, nil, err
	}
	return m, maps, nil
}

// sample prints the region under a screen point given as "x,y".
func sample(m *engine.Map, point string) int {
	xs, ys, ok := strings.Cut(point, ",")
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if !ok || errX != nil || errY != nil {
		fmt.Fprintf(os.Stderr, "invalid -sample %q, want x,y\n", point)
		return 2
	}
	r, found := m.QueryAt(x, y)
	if !found {
		fmt.Printf("(%g, %g): no region\n", x, y)
		return 0
	}
	v := r.View()
	fmt.Printf("(%g, %g): %s, population %.1fM, influence %.0f%%, region %d\n", x, y, v.Name, v.Population, v.Influence, v.ID)
	return 0
}

func startAPI(addr string, cmds *app.Commands) *api.API {
	if addr == "" {
		return nil
	}
	server := api.NewAPI(cmds)
	go func() {
		if err := server.Start(addr); err != nil {
			fmt.Printf("[API] %v\n", err)
		}
	}()
	fmt.Printf("[API] Available at http://%s (websocket at /ws)\n", addr)
	return server
}

// startScript runs the script once on the calling goroutine, or with -tick
// starts calling its tick() through the command queue.
func startScript(opts options, settings typedef.Settings, m *engine.Map, cmds *app.Commands) (func(), error) {
	if opts.scriptPath == "" {
		return nil, nil
	}
	src, err := os.ReadFile(opts.scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	if opts.tick <= 0 {
		timeout := time.Duration(settings.ScriptTimeout) * time.Second
		_, err := javascript.Execute(context.Background(), string(src), opts.scriptPath, engine.Direct(m), timeout)
		return nil, err
	}

	ticker := time.NewTicker(opts.tick)
	stop, err := javascript.Run(string(src), opts.scriptPath, cmds, ticker.C)
	if err != nil {
		ticker.Stop()
		return nil, err
	}
	return func() {
		ticker.Stop()
		stop()
	}, nil
}

func saveAutosave(m *engine.Map, mapPath string, settings typedef.Settings) {
	if settings.Autosave == "" {
		return
	}
	if err := app.SaveSession(m, mapPath, settings.Autosave); err != nil {
		fmt.Printf("[SNAPSHOT] Autosave failed: %v\n", err)
		return
	}
	fmt.Printf("[SNAPSHOT] Saved %s\n", settings.Autosave)
}

func runHeadless(m *engine.Map, cmds *app.Commands, settings typedef.Settings, mapPath string) {
	fmt.Println("[APP] Running in headless mode")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds.Drain(m)
		case <-sigChan:
			fmt.Println("[APP] Received shutdown signal. Cleaning up...")
			cmds.Drain(m)
			saveAutosave(m, mapPath, settings)
			fmt.Println("[APP] Shutdown complete.")
			return
		}
	}
}

func runWithGUI(m *engine.Map, maps *app.MapManager, cmds *app.Commands, settings typedef.Settings, mapPath string, cleanup func()) {
	if runtime.GOARCH != "wasm" && runtime.GOOS != "js" {
		if err := app.InitClipboard(); err != nil {
			fmt.Printf("[APP] Native clipboard unavailable, using fallback: %v\n", err)
		}
	}

	game := app.NewGame(m, settings, cmds, maps, mapPath)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		fmt.Println("[APP] Received shutdown signal. Cleaning up...")
		// Runs on the render goroutine at the next Update.
		cmds.Do(func(m *engine.Map) { saveAutosave(m, mapPath, settings) })
		cmds.Close()
		if cleanup != nil {
			cleanup()
		}
		os.Exit(0)
	}()

	ebiten.SetWindowTitle("Influence Map")
	ebiten.SetTPS(ebiten.SyncWithFPS)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(settings.DisplayWidth*2, settings.DisplayHeight*2)

	err := ebiten.RunGameWithOptions(game, &ebiten.RunGameOptions{
		X11ClassName:    "Influence Map",
		X11InstanceName: "influencemap",
	})

	// The window was closed normally.
	saveAutosave(m, mapPath, settings)
	cmds.Close()
	game.Close()
	if cleanup != nil {
		cleanup()
	}
	if err != nil {
		fmt.Printf("[APP] %v\n", err)
		os.Exit(1)
	}
}
