package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/skeletal/common"
)

func main() {
	actorFile := flag.String("actor", "hero.yaml", "actor prefab in prefabs/ to show")
	stageFile := flag.String("stage", "", "stage in prefabs/ to show instead of a single actor")
	debug := flag.Bool("debug", false, "draw hit-test outlines")
	watch := flag.Bool("watch", false, "reload prefabs, scripts and assets when they change on disk")
	mute := flag.Bool("mute", false, "do not play event sounds")
	verbose := flag.Bool("v", false, "log runtime details")
	zoom := flag.Float64("zoom", 2, "zoom for a single actor")
	flag.Parse()

	if *verbose {
		common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("skeletal viewer")

	game, err := NewGame(Config{
		ActorFile: *actorFile,
		StageFile: *stageFile,
		Debug:     *debug,
		Watch:     *watch,
		Mute:      *mute,
		Zoom:      *zoom,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
