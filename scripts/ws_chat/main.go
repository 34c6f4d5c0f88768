package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	user := flag.String("user", "cli-user", "username")
	password := flag.String("password", "password123", "password")
	register := flag.Bool("register", false, "register the user before logging in")
	channel := flag.Int64("channel", 1, "channel id to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	if *register {
		if err := postJSON(ctx, *server+"/api/auth/register", *user, *password, nil); err != nil {
			return fmt.Errorf("register: %w", err)
		}
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := postJSON(ctx, *server+"/api/auth/login", *user, *password, &auth); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+auth.Token)
	wsURL := "ws" + strings.TrimPrefix(*server, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v any) {
		if writeErr := wsjson.Write(ctx, conn, v); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	send(proto.Inbound{Type: proto.InboundTypeJoinChannel, ChannelID: channel})

	fmt.Printf("Connected to %s as %s in channel %d\n", wsURL, *user, *channel)
	fmt.Println("Type messages and press Enter to send. /join <id> switches channel. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func postJSON(ctx context.Context, url, user, password string, out any) error {
	body, err := json.Marshal(map[string]string{"username": user, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		var env proto.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("unmarshal frame: %v", err)
			continue
		}

		switch env.Type {
		case proto.OutboundTypeNewMessage:
			var evt proto.NewMessage
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("unmarshal new_message: %v", err)
				continue
			}
			text := evt.Content
			if evt.Attachment != nil {
				text += fmt.Sprintf(" [%s %s]", evt.Attachment.Name, evt.Attachment.Path)
			}
			fmt.Printf("[#%d %s] %s: %s\n", evt.ChannelID, evt.CreatedAt, evt.Username, text)
		case proto.OutboundTypeOnlineUsers:
			var evt proto.OnlineUsers
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Printf("unmarshal online_users: %v", err)
				continue
			}
			names := make([]string, 0, len(evt.Users))
			for _, u := range evt.Users {
				names = append(names, u.Username)
			}
			fmt.Printf("online: %s\n", strings.Join(names, ", "))
		case proto.OutboundTypeUserTyping:
			var evt proto.UserTyping
			if err := json.Unmarshal(data, &evt); err == nil {
				fmt.Printf("%s is typing...\n", evt.Username)
			}
		case proto.OutboundTypeError:
			var evt proto.Error
			if err := json.Unmarshal(data, &evt); err == nil {
				fmt.Printf("error %s: %s\n", evt.Code, evt.Message)
			}
		default:
			fmt.Printf("frame: %s\n", data)
		}
	}
}

func writeLoop(ctx context.Context, send func(any)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if rest, found := strings.CutPrefix(line, "/join "); found {
				id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
				if err != nil {
					fmt.Println("usage: /join <channel id>")
					continue
				}
				send(proto.Inbound{Type: proto.InboundTypeJoinChannel, ChannelID: &id})
				continue
			}
			send(proto.Inbound{Type: proto.InboundTypeMessage, Content: line})
		}
	}
}
