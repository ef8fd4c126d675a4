package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"duochat/auth"
	"duochat/infrastructure/httpapi"
	"duochat/infrastructure/ws"
	"duochat/moderation"
	"duochat/repositories"
	"duochat/runtime"
	"duochat/services"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config  Config
	baseURL string
	server  *httptest.Server
	conns   []*websocket.Conn
}

// SetupSuite loads the environment configuration and, unless pointed at a
// running server, boots the full stack in-process.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr != "" {
		s.baseURL = "http://" + s.Config.ServerAddr
		return
	}

	logger := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator(nil, '*', logger)
	s.Require().NoError(err)

	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(logger, registry)
	issuer := auth.NewTokenIssuer("e2e-signing-key", time.Hour)
	authService := services.NewAuthService(repositories.NewUserRepository(), issuer)
	chatService := services.NewChatService(logger)

	mux := httpapi.NewHandler(logger, authService, chatService, broadcaster).Routes()
	mux.Handle("/ws", ws.NewHandler(logger, registry, chatService, broadcaster,
		&moderator, 16, 5*time.Second))

	s.server = httptest.NewServer(mux)
	s.baseURL = s.server.URL
}

func (s *BaseSuite) TearDownSuite() {
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	if s.server != nil {
		s.server.Close()
	}
}

// Step prints a colorized header so the scenario reads as a script in logs.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Post sends a JSON body and decodes the JSON response, logging both when
// E2E_DEBUG_JSON is enabled.
func (s *BaseSuite) Post(method, path string, body any) (int, map[string]any) {
	var buf bytes.Buffer
	s.Require().NoError(json.NewEncoder(&buf).Encode(body))

	req, err := http.NewRequest(method, s.baseURL+path, &buf)
	s.Require().NoError(err)

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var payload map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&payload))

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		reqJSON, _ := json.MarshalIndent(body, "", "  ")
		respJSON, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", reqJSON, respJSON)
	}
	s.T().Log(logBuilder.String())

	return resp.StatusCode, payload
}

// Dial opens a live connection and sends the identifying frame.
func (s *BaseSuite) Dial(username string) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(s.baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	// Close at suite teardown; a subtest-scoped t.Cleanup would sever the
	// connection as soon as the dialing step finishes.
	s.conns = append(s.conns, conn)

	s.Require().NoError(conn.WriteJSON(map[string]string{
		"type":     "auth",
		"username": username,
	}))
	// Identification happens on the server's read loop; give it a moment
	// before relying on pushes reaching this connection.
	time.Sleep(100 * time.Millisecond)
	return conn
}

// ReadFrame reads the next server push, failing the suite on timeout.
func (s *BaseSuite) ReadFrame(conn *websocket.Conn) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	var frame map[string]any
	s.Require().NoError(conn.ReadJSON(&frame))
	if s.Config.DebugJSON {
		dump, _ := json.MarshalIndent(frame, "", "  ")
		s.T().Logf("WS FRAME:\n%s", dump)
	}
	return frame
}
