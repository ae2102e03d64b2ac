package bridge

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/beacon-network/beacon/log"
)

// Server exposes a Bridge's RPC surface as JSON-over-HTTP via httprouter,
// the same shape go-ethereum-family nodes use to expose JSON-RPC over
// httprouter, rather than hand-written gRPC/protobuf stubs that can't be
// regenerated here without a protoc toolchain.
type Server struct {
	bridge *Bridge
	router *httprouter.Router
	log    log.Logger
}

func NewServer(b *Bridge) *Server {
	s := &Server{bridge: b, router: httprouter.New(), log: log.New("module", "bridge-server")}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) routes() {
	s.router.POST("/state/get", s.handleGetState)
	s.router.POST("/state/put", s.handlePutState)
	s.router.POST("/state/delete", s.handleDeleteState)
	s.router.POST("/state/range", s.handleGetStateByRange)
	s.router.POST("/state/partial-composite-key", s.handleGetStateByPartialCompositeKey)
	s.router.GET("/context/transaction-id", s.handleGetTransactionId)
	s.router.GET("/context/channel-id", s.handleGetChannelId)
	s.router.GET("/context/creator", s.handleGetCreator)
	s.router.GET("/context/timestamp", s.handleGetTransactionTimestamp)
	s.router.POST("/event", s.handleSetEvent)
	s.router.POST("/log", s.handleLogMessage)
	s.router.POST("/invoke", s.handleInvokeChaincode)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct{ Key string }
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	v, found, err := s.bridge.GetState(req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": v, "found": found})
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Key   string
		Value []byte
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.bridge.PutState(req.Key, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleDeleteState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct{ Key string }
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.bridge.DeleteState(req.Key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetStateByRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct{ Start, End string }
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.bridge.GetStateByRange(req.Start, req.End)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetStateByPartialCompositeKey(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		ObjectType string
		Keys       []string
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.bridge.GetStateByPartialCompositeKey(req.ObjectType, req.Keys)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetTransactionId(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	v, err := s.bridge.GetTransactionId()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"transaction_id": v})
}

func (s *Server) handleGetChannelId(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	v, err := s.bridge.GetChannelId()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"channel_id": v})
}

func (s *Server) handleGetCreator(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	v, err := s.bridge.GetCreator()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"creator": v})
}

func (s *Server) handleGetTransactionTimestamp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	v, err := s.bridge.GetTransactionTimestamp()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"timestamp": v})
}

func (s *Server) handleSetEvent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Name    string
		Payload []byte
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.bridge.SetEvent(req.Name, req.Payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLogMessage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Level int
		Msg   string
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.bridge.LogMessage(LogLevel(req.Level), req.Msg)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleInvokeChaincode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		ChaincodeId string
		Function    string
		Args        []string
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	_, err := s.bridge.InvokeChaincode(req.ChaincodeId, req.Function, req.Args)
	writeError(w, err)
}
