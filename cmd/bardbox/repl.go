package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/osa030/bardbox/internal/app/playback"
)

const helpText = `bardbox is a background-music console for tabletop sessions.

The following commands are available:
  /help, /h                       Display this help text.
  /quit, /q                       Exit the program.
  /playables, /pl                 List the available playables.
  /list, /l                       List the tracks of the current playable.
  /play, /p <playable> [track]    Start a playable, optionally at a track.
  /track, /t [track]              Switch the current playable to a track.
  /vol, /v [percent]              Show or set the master volume.
  /stop, /s                       Stop the current playable.`

// completer rebuilds its suggestions on every keystroke so /play and
// /track always reflect the registered playables and the active one.
type completer struct {
	player *playback.Player
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	playItems := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range c.player.ListPlayables() {
		playItems = append(playItems, readline.PcItem(name))
	}
	trackItems := make([]readline.PrefixCompleterInterface, 0)
	if tracks, err := c.player.ListTracks(); err == nil {
		for _, name := range tracks {
			trackItems = append(trackItems, readline.PcItem(name))
		}
	}
	pc := readline.NewPrefixCompleter(
		readline.PcItem("/help"), readline.PcItem("/h"),
		readline.PcItem("/quit"), readline.PcItem("/q"),
		readline.PcItem("/playables"), readline.PcItem("/pl"),
		readline.PcItem("/list"), readline.PcItem("/l"),
		readline.PcItem("/stop"), readline.PcItem("/s"),
		readline.PcItem("/vol"), readline.PcItem("/v"),
		readline.PcItem("/play", playItems...), readline.PcItem("/p", playItems...),
		readline.PcItem("/track", trackItems...), readline.PcItem("/t", trackItems...),
	)
	return pc.Do(line, pos)
}

// runREPL runs the operator console until /quit or EOF.
func runREPL(player *playback.Player) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bardbox > ",
		AutoComplete:    &completer{player: player},
		InterruptPrompt: "^C",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("Welcome to -- B A R D B O X --")
	fmt.Println("Type /help for a list of commands.")

	for {
		rl.SetPrompt(prompt(player))
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			player.Stop(0)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "/h", "/help":
			fmt.Println(helpText)
		case "/q", "/quit":
			player.Stop(0)
			return nil
		case "/s", "/stop":
			player.Stop(playback.DefaultFade)
		case "/pl", "/playables":
			for _, name := range player.ListPlayables() {
				fmt.Println("  * " + name)
			}
		case "/l", "/list":
			listTracks(player)
		case "/p", "/play":
			play(player, args)
		case "/t", "/track":
			switchTrack(player, args)
		case "/v", "/vol":
			volume(player, args)
		default:
			fmt.Printf("Unknown command %q; type /help for a list.\n", cmd)
		}
		fmt.Println()
	}
}

func prompt(player *playback.Player) string {
	text := "bardbox"
	if name := player.CurrentPlayable(); name != "" {
		if track, err := player.CurrentTrack(); err == nil && track != "" {
			text += fmt.Sprintf(" (%s/%s)", name, track)
		} else {
			text += fmt.Sprintf(" (%s)", name)
		}
	}
	return text + " > "
}

func play(player *playback.Player, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: /play <playable> [track]")
		return
	}
	track := ""
	if len(args) > 1 {
		track = args[1]
	}
	if err := player.Play(args[0], track, playback.DefaultFade); err != nil {
		fmt.Println("Error:", err)
	}
}

func switchTrack(player *playback.Player, args []string) {
	if len(args) == 0 {
		fmt.Println("The following tracks are available to switch to:")
		listTracks(player)
		return
	}
	if err := player.SwitchTrack(args[0]); err != nil {
		fmt.Println("Error:", err)
	}
}

func listTracks(player *playback.Player) {
	tracks, err := player.ListTracks()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	current, _ := player.CurrentTrack()
	for _, name := range tracks {
		suffix := ""
		if name == current {
			suffix = " (CURRENTLY PLAYING)"
		}
		fmt.Println("  * " + name + suffix)
	}
}

func volume(player *playback.Player, args []string) {
	if len(args) == 0 {
		fmt.Printf("Volume is currently set at %d%%\n", int(player.Volume()*100+0.5))
		return
	}
	percent, err := strconv.Atoi(args[0])
	if err != nil || percent < 0 || percent > 100 {
		fmt.Println("Volume must be a whole number between 0 and 100.")
		return
	}
	player.SetVolume(float64(percent) / 100)
	fmt.Printf("Volume is now set at %d%%\n", percent)
}
