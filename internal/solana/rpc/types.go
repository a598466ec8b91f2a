package rpc

import "encoding/json"

// JSON-RPC request/response types

type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// getSignaturesForAddress record. Pages come back newest-first; the
// signature doubles as the "before" cursor for the next older page.
type SignatureInfo struct {
	Signature          string      `json:"signature"`
	Slot               int64       `json:"slot"`
	BlockTime          *int64      `json:"blockTime"`
	Err                interface{} `json:"err"`
	Memo               *string     `json:"memo"`
	ConfirmationStatus *string     `json:"confirmationStatus"`
}

// getTransaction response, trimmed to the fields the timestamp lookup needs.
type TransactionResult struct {
	Slot      int64  `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
}
