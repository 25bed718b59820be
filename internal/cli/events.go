package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <id>",
		Short: "Stream events from a game",
		Long: `Connect to the game's websocket endpoint and stream events in real-time.

Events include:
  - player_joined: A player took a seat
  - game_started: All required humans have joined
  - unit_moved: A stack moved without a fight
  - combat_resolved: A stack attacked a tile
  - units_recruited: Units were bought
  - construction_built: A building was built or upgraded
  - turn_ended: Play passed to the next player
  - bot_acted: A bot finished its round
  - game_finished: The game is over

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "/events")
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return streamEvents(ctx, path, cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// StreamEvent is one message received from the game's event stream
type StreamEvent struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp,omitzero"`
	GameID    uint32          `json:"game_id"`
	PlayerID  string          `json:"player_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func streamEvents(ctx context.Context, path string, w io.Writer, jsonOutput bool) error {
	wsURL, err := client.WebsocketURL(path)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil {
			var errResp ErrorResponse
			if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error.Code != "" {
				return &errResp.Error
			}
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock ReadMessage on interrupt
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Fprintln(w, "Disconnected")
				}
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("stream closed: %s", closeErr.Text)
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var event StreamEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("bad event: %w", err)
		}
		printEvent(w, event, data, jsonOutput)
	}
}

func printEvent(w io.Writer, event StreamEvent, raw []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Fprintln(w, string(raw))
		return
	}

	if event.Type == "connected" {
		fmt.Fprintf(w, "Connected to game %d\n", event.GameID)
		return
	}

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	payload := strings.TrimSpace(string(event.Payload))
	if len(payload) > 100 {
		payload = payload[:100] + "..."
	}
	line := fmt.Sprintf("[%s] %s", timestamp.Format("2006-01-02 15:04:05"), event.Type)
	if event.PlayerID != "" {
		line += " by " + event.PlayerID
	}
	if payload != "" && payload != "null" {
		line += ": " + payload
	}
	fmt.Fprintln(w, line)
}
