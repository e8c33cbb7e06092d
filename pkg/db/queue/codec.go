package queue

import (
	"encoding/json"
	"fmt"

	"github.com/erain9/matchingo/pkg/messaging"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeTradeMessage serialises msg as a protobuf Struct.
func EncodeTradeMessage(msg *messaging.TradeMessage) ([]byte, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trade message: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten trade message: %w", err)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build protobuf struct: %w", err)
	}
	return proto.Marshal(s)
}

// DecodeTradeMessage is the inverse of EncodeTradeMessage.
func DecodeTradeMessage(data []byte) (*messaging.TradeMessage, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal protobuf struct: %w", err)
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode trade message: %w", err)
	}
	var msg messaging.TradeMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode trade message: %w", err)
	}
	return &msg, nil
}
