// Package p2p implements C9: the message set, routing discipline, and
// peer-reputation policy fixed by the spec. Transport/discovery mechanics
// (TCP, noise, mDNS, DHT...) are interchangeable implementation choices;
// what's fixed here is wire shape, queueing, and policy.
package p2p

import (
	"github.com/beacon-network/beacon/core"
	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/rlp"
)

// MaxMessageSize is the encoded size ceiling; larger messages are rejected
// with Network("message too large").
const MaxMessageSize = 1_048_576

// Topics are the three logical gossip channels.
const (
	TopicBlocks       = "beacon-blocks"
	TopicTransactions = "beacon-transactions"
	TopicGeneral      = "beacon-general"
)

// PayloadKind tags the wire message variant.
type PayloadKind byte

const (
	KindPing PayloadKind = iota
	KindPong
	KindBlock
	KindTransaction
	KindBlockRequest
	KindBlockResponse
	KindTransactionRequest
	KindTransactionResponse
	KindPeerInfo
	KindPeerListRequest
	KindPeerListResponse
)

type BlockRequest struct {
	StartIndex uint64
	Count      uint64
}

type BlockResponse struct {
	Blocks    []*core.Block
	RequestID string
}

type TransactionRequest struct {
	TxID string
}

type TransactionResponse struct {
	Transaction *core.Transaction // nil means "not found"
	RequestID   string
}

type PeerInfo struct {
	Version         uint32
	NetworkID       string
	BestBlockIndex  uint64
	PeerCount       uint32
}

type PeerListRequest struct{}

type PeerListResponse struct {
	Peers []string // multiaddr strings
}

// Payload is the decoded form of a wire message's body.
type Payload struct {
	Kind                PayloadKind
	Block               *core.Block
	Transaction         *core.Transaction
	BlockRequest        *BlockRequest
	BlockResponse       *BlockResponse
	TransactionRequest  *TransactionRequest
	TransactionResponse *TransactionResponse
	PeerInfo            *PeerInfo
	PeerListRequest     *PeerListRequest
	PeerListResponse    *PeerListResponse
}

// ProtocolMessage is the envelope wrapping every wire payload.
type ProtocolMessage struct {
	Version   uint32
	Timestamp int64
	Payload   Payload
	Signature string // hex, empty means "not set" (Option<hex>)
}

// wireEnvelope is the RLP-encodable shape: Payload's sum-type fields don't
// serialise directly via reflection, so it's flattened into (kind, body)
// before encoding.
type wireEnvelope struct {
	Version   uint32
	Timestamp int64
	Kind      byte
	Body      []byte
	Signature string
}

// Encode renders the envelope to bytes, enforcing the size ceiling.
func (m *ProtocolMessage) Encode() ([]byte, error) {
	body, err := encodePayload(m.Payload)
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Serialization, err)
	}
	env := wireEnvelope{Version: m.Version, Timestamp: m.Timestamp, Kind: byte(m.Payload.Kind), Body: body, Signature: m.Signature}
	out, err := rlp.Encode(env)
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Serialization, err)
	}
	if len(out) > MaxMessageSize {
		return nil, beaconerrors.New(beaconerrors.Network, "message too large")
	}
	return out, nil
}

// DecodeProtocolMessage reverses Encode, rejecting any input exceeding the
// size ceiling before attempting to parse it.
func DecodeProtocolMessage(buf []byte) (*ProtocolMessage, error) {
	if len(buf) > MaxMessageSize {
		return nil, beaconerrors.New(beaconerrors.Network, "message too large")
	}
	var env wireEnvelope
	if err := rlp.Decode(buf, &env); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Serialization, err)
	}
	payload, err := decodePayload(PayloadKind(env.Kind), env.Body)
	if err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Serialization, err)
	}
	return &ProtocolMessage{Version: env.Version, Timestamp: env.Timestamp, Payload: *payload, Signature: env.Signature}, nil
}

func encodePayload(p Payload) ([]byte, error) {
	switch p.Kind {
	case KindPing, KindPong, KindPeerListRequest:
		return nil, nil
	case KindBlock:
		return p.Block.Encode(), nil
	case KindTransaction:
		return p.Transaction.Encode(), nil
	case KindBlockRequest:
		return rlp.Encode(*p.BlockRequest)
	case KindBlockResponse:
		return encodeBlockResponse(p.BlockResponse)
	case KindTransactionRequest:
		return rlp.Encode(*p.TransactionRequest)
	case KindTransactionResponse:
		return encodeTransactionResponse(p.TransactionResponse)
	case KindPeerInfo:
		return rlp.Encode(*p.PeerInfo)
	case KindPeerListResponse:
		return rlp.Encode(*p.PeerListResponse)
	default:
		return nil, beaconerrors.Newf(beaconerrors.Serialization, "unknown payload kind %d", p.Kind)
	}
}

func encodeBlockResponse(r *BlockResponse) ([]byte, error) {
	enc := struct {
		Blocks    [][]byte
		RequestID string
	}{RequestID: r.RequestID}
	for _, b := range r.Blocks {
		enc.Blocks = append(enc.Blocks, b.Encode())
	}
	return rlp.Encode(enc)
}

func encodeTransactionResponse(r *TransactionResponse) ([]byte, error) {
	enc := struct {
		Transaction []byte
		RequestID   string
	}{RequestID: r.RequestID}
	if r.Transaction != nil {
		enc.Transaction = r.Transaction.Encode()
	}
	return rlp.Encode(enc)
}

func decodePayload(kind PayloadKind, body []byte) (*Payload, error) {
	switch kind {
	case KindPing:
		return &Payload{Kind: KindPing}, nil
	case KindPong:
		return &Payload{Kind: KindPong}, nil
	case KindPeerListRequest:
		return &Payload{Kind: KindPeerListRequest, PeerListRequest: &PeerListRequest{}}, nil
	case KindBlock:
		b, err := core.DecodeBlock(body)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: KindBlock, Block: b}, nil
	case KindTransaction:
		t, err := core.DecodeTransaction(body)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: KindTransaction, Transaction: t}, nil
	case KindBlockRequest:
		var r BlockRequest
		if err := rlp.Decode(body, &r); err != nil {
			return nil, err
		}
		return &Payload{Kind: KindBlockRequest, BlockRequest: &r}, nil
	case KindBlockResponse:
		var enc struct {
			Blocks    [][]byte
			RequestID string
		}
		if err := rlp.Decode(body, &enc); err != nil {
			return nil, err
		}
		resp := &BlockResponse{RequestID: enc.RequestID}
		for _, raw := range enc.Blocks {
			b, err := core.DecodeBlock(raw)
			if err != nil {
				return nil, err
			}
			resp.Blocks = append(resp.Blocks, b)
		}
		return &Payload{Kind: KindBlockResponse, BlockResponse: resp}, nil
	case KindTransactionRequest:
		var r TransactionRequest
		if err := rlp.Decode(body, &r); err != nil {
			return nil, err
		}
		return &Payload{Kind: KindTransactionRequest, TransactionRequest: &r}, nil
	case KindTransactionResponse:
		var enc struct {
			Transaction []byte
			RequestID   string
		}
		if err := rlp.Decode(body, &enc); err != nil {
			return nil, err
		}
		resp := &TransactionResponse{RequestID: enc.RequestID}
		if len(enc.Transaction) > 0 {
			t, err := core.DecodeTransaction(enc.Transaction)
			if err != nil {
				return nil, err
			}
			resp.Transaction = t
		}
		return &Payload{Kind: KindTransactionResponse, TransactionResponse: resp}, nil
	case KindPeerInfo:
		var pi PeerInfo
		if err := rlp.Decode(body, &pi); err != nil {
			return nil, err
		}
		return &Payload{Kind: KindPeerInfo, PeerInfo: &pi}, nil
	case KindPeerListResponse:
		var r PeerListResponse
		if err := rlp.Decode(body, &r); err != nil {
			return nil, err
		}
		return &Payload{Kind: KindPeerListResponse, PeerListResponse: &r}, nil
	default:
		return nil, beaconerrors.Newf(beaconerrors.Serialization, "unknown payload kind %d", kind)
	}
}
