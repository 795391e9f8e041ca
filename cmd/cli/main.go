package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/minaorangina/flightchess/client"
	"github.com/minaorangina/flightchess/deck"
	"github.com/minaorangina/flightchess/internal/logger"
	"github.com/minaorangina/flightchess/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	addr := flag.String("addr", "http://localhost:8000", "server address")
	gameID := flag.String("game", "", "game to join; a new one is created when empty")
	name := flag.String("name", "", "your name")
	maxPlayers := flag.Int("players", 4, "seats in a new game")
	verbose := flag.Bool("v", false, "log debug output")
	flag.Parse()

	if *name == "" {
		log.Fatal("-name is required")
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	lg, err := logger.New(level, true)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer lg.Sync()

	c, err := client.New(client.Opts{BaseURL: *addr, Logger: lg})
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *gameID == "" {
		res, err := c.CreateGame(ctx, *name, *maxPlayers)
		if err != nil {
			log.Fatalf("Could not create game: %v", err)
		}
		client.SendText(os.Stdout, "Created game %s. Share the code with your friends.\n", res.GameID)
	} else {
		if _, err := c.Join(ctx, *gameID, *name); err != nil {
			log.Fatalf("Could not join game: %v", err)
		}
	}

	if err := c.Dial(ctx); err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	client.SendText(os.Stdout, client.HelpText())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.Run(ctx); err != nil {
			return err
		}
		if ctx.Err() == nil {
			client.SendText(os.Stdout, "Connection closed\n")
		}
		// a clean hang up still has to stop the stdin reader
		return errQuit
	})

	g.Go(func() error {
		return printUpdates(ctx, c)
	})

	g.Go(func() error {
		return readCommands(ctx, c, lg)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
}

var errQuit = errors.New("quit")

// resultText is the part of a result the terminal prints
type resultText struct {
	Request protocol.MsgType `json:"request"`
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    struct {
		Viewed []deck.Card `json:"viewed"`
	} `json:"data"`
}

func printUpdates(ctx context.Context, c *client.Client) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-c.Updates():
			if !ok {
				return nil
			}
			switch env.Type {
			case protocol.GameState:
				client.SendText(os.Stdout, "\n%s", client.BuildStateText(c.Replica().State(), c.PlayerID()))
			case protocol.ResultType:
				var res resultText
				if err := env.Decode(&res); err != nil {
					continue
				}
				if !res.Success {
					client.SendText(os.Stdout, "Could not %s: %s\n", res.Request, res.Message)
				}
				if len(res.Data.Viewed) > 0 {
					client.SendText(os.Stdout, "You peek at their cards: %v\n", res.Data.Viewed)
				}
			case protocol.PlayerJoined, protocol.PlayerLeft, protocol.GameStart:
				client.SendText(os.Stdout, "%s\n", env.Type)
			}
		}
	}
}

// readCommands returns errQuit once the player has left. Stdin is never
// closed, so the scanner goroutine outlives a cancelled context.
func readCommands(ctx context.Context, c *client.Client, lg *zap.Logger) error {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}

			cmd, err := client.ParseCommand(line, c.Replica().State())
			if errors.Is(err, client.ErrEmptyCommand) {
				continue
			}
			if err != nil {
				client.SendText(os.Stdout, "%v\n", err)
				continue
			}

			switch cmd.Kind {
			case client.CmdState:
				client.SendText(os.Stdout, "%s", client.BuildStateText(c.Replica().State(), c.PlayerID()))
				continue
			case client.CmdHelp:
				client.SendText(os.Stdout, client.HelpText())
				continue
			}

			if _, err := c.Execute(cmd); err != nil {
				lg.Debug("could not send", zap.Error(err))
				return fmt.Errorf("could not send %s: %w", cmd.Kind, err)
			}
			if cmd.Kind == client.CmdQuit {
				return errQuit
			}
		}
	}
}
