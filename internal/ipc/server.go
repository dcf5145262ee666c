package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/treetile/internal/bus"
	"github.com/1broseidon/treetile/internal/engine"
	"github.com/1broseidon/treetile/internal/platform"
	"github.com/1broseidon/treetile/internal/runtimepath"
	"github.com/1broseidon/treetile/internal/tree"
)

// Server handles IPC requests from clients. Connections are accepted on
// their own goroutines, but any work against the tree is submitted to the
// daemon's dispatch function, which runs it on the single mutation
// goroutine and returns once it completed.
type Server struct {
	socketPath string
	listener   net.Listener

	tree     *tree.Tree
	bus      *bus.Bus
	dispatch func(func())
	reload   func() error

	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(t *tree.Tree, b *bus.Bus, dispatch func(func()), reload func() error) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		tree:       t,
		bus:        b,
		dispatch:   dispatch,
		reload:     reload,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandGetTree:
		return s.handleGetTree()
	case CommandMoveWindow:
		return s.handleMoveWindow(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	if err := s.reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	var status StatusData
	s.dispatch(func() {
		status.MonitorCount = len(s.tree.Monitors())
		for _, mon := range s.tree.Monitors() {
			for node := range s.tree.Descendants(mon) {
				if s.tree.Kind(node).IsWindow() {
					status.WindowCount++
				}
			}
		}
	})
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetMonitors() *Response {
	var infos []MonitorInfo
	s.dispatch(func() {
		for _, mon := range s.tree.Monitors() {
			bounds := s.tree.Bounds(mon)
			info := MonitorInfo{
				Name:        s.tree.Name(mon),
				X:           bounds.X,
				Y:           bounds.Y,
				Width:       bounds.Width,
				Height:      bounds.Height,
				ScaleFactor: s.tree.ScaleFactor(mon),
			}
			if ws := s.tree.DisplayedWorkspace(mon); ws != tree.None {
				info.DisplayedWorkspace = s.tree.Name(ws)
			}
			infos = append(infos, info)
		}
	})

	resp, _ := NewOKResponse(MonitorsData{Monitors: infos})
	return resp
}

func (s *Server) handleGetTree() *Response {
	var data TreeData
	s.dispatch(func() {
		for _, mon := range s.tree.Monitors() {
			data.Monitors = append(data.Monitors, s.buildNode(mon))
		}
	})

	resp, _ := NewOKResponse(data)
	return resp
}

// buildNode runs on the dispatch goroutine.
func (s *Server) buildNode(id tree.NodeID) TreeNode {
	node := TreeNode{Type: s.tree.Kind(id).String()}
	switch s.tree.Kind(id) {
	case tree.KindMonitor, tree.KindWorkspace:
		node.Name = s.tree.Name(id)
		if s.tree.Kind(id) == tree.KindWorkspace {
			node.Layout = s.tree.Layout(id).String()
		}
	case tree.KindSplit:
		node.Layout = s.tree.Layout(id).String()
		node.Size = s.tree.SizePercentage(id)
	case tree.KindTilingWindow, tree.KindFloatingWindow:
		node.Handle = uint32(s.tree.Handle(id))
		node.Title = s.tree.WindowTitle(id)
		node.Focused = s.tree.Focused() == id
		if s.tree.IsResizable(id) {
			node.Size = s.tree.SizePercentage(id)
		}
	}
	for _, child := range s.tree.Children(id) {
		node.Children = append(node.Children, s.buildNode(child))
	}
	return node
}

func (s *Server) handleMoveWindow(payload json.RawMessage) *Response {
	var move MoveWindowPayload
	if err := json.Unmarshal(payload, &move); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid move payload: %v", err))
	}
	dir, err := tree.ParseDirection(move.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	s.dispatch(func() {
		win := tree.None
		if move.Handle != 0 {
			// Untracked handles are a benign no-op: the window may have
			// closed before the request arrived.
			win, _ = s.tree.WindowByHandle(platform.WindowHandle(move.Handle))
		} else {
			if focused := s.tree.Focused(); focused != tree.None && s.tree.Kind(focused).IsWindow() {
				win = focused
			}
		}
		if win == tree.None {
			return
		}
		s.bus.Invoke(engine.MoveWindowCommand{Window: win, Direction: dir})
	})

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
