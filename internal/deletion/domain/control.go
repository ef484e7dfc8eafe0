package domain

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Namespace swarm namespace a payload is stored under
type Namespace int

const (
	// NamespaceDefault 1o1 and sync messages
	NamespaceDefault Namespace = 0
	// NamespaceClosedGroupMessages v2 group messages
	NamespaceClosedGroupMessages Namespace = 11
)

// Content field numbers
const (
	fieldDataMessage   protowire.Number = 1
	fieldUnsendMessage protowire.Number = 9
	fieldSigTimestamp  protowire.Number = 15

	fieldDataGroupUpdate protowire.Number = 120
	fieldGroupDeleteMemb protowire.Number = 8

	fieldUnsendTimestamp protowire.Number = 1
	fieldUnsendAuthor    protowire.Number = 2

	fieldDeleteMemberIDs protowire.Number = 1
	fieldDeleteHashes    protowire.Number = 2
	fieldDeleteAdminSig  protowire.Number = 3
)

// ErrMalformedContent payload could not be decoded
var ErrMalformedContent = errors.New("malformed content")

// UnsendMessage ask the recipient to drop one message
type UnsendMessage struct {
	CreateAtNetworkTimestamp   int64
	ReferencedMessageTimestamp int64
	Author                     string
}

// Encode Content{ unsendMessage{timestamp, author}, sigTimestamp }
func (u UnsendMessage) Encode() []byte {
	var inner []byte
	inner = protowire.AppendTag(inner, fieldUnsendTimestamp, protowire.VarintType)
	inner = protowire.AppendVarint(inner, uint64(u.ReferencedMessageTimestamp))
	inner = protowire.AppendTag(inner, fieldUnsendAuthor, protowire.BytesType)
	inner = protowire.AppendString(inner, u.Author)

	var out []byte
	out = protowire.AppendTag(out, fieldUnsendMessage, protowire.BytesType)
	out = protowire.AppendBytes(out, inner)
	out = protowire.AppendTag(out, fieldSigTimestamp, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(u.CreateAtNetworkTimestamp))
	return out
}

// GroupUpdateDeleteMemberContentMessage ask every member to drop messages by hash or author
type GroupUpdateDeleteMemberContentMessage struct {
	CreateAtNetworkTimestamp int64
	GroupPk                  string
	MemberSessionIDs         []string
	MessageHashes            []string
	AdminSignature           []byte
}

// Encode Content{ dataMessage{ groupUpdateMessage{ deleteMemberContent{...} } }, sigTimestamp }
func (g GroupUpdateDeleteMemberContentMessage) Encode() []byte {
	var del []byte
	for _, id := range g.MemberSessionIDs {
		del = protowire.AppendTag(del, fieldDeleteMemberIDs, protowire.BytesType)
		del = protowire.AppendString(del, id)
	}
	for _, h := range g.MessageHashes {
		del = protowire.AppendTag(del, fieldDeleteHashes, protowire.BytesType)
		del = protowire.AppendString(del, h)
	}
	if len(g.AdminSignature) > 0 {
		del = protowire.AppendTag(del, fieldDeleteAdminSig, protowire.BytesType)
		del = protowire.AppendBytes(del, g.AdminSignature)
	}

	var update []byte
	update = protowire.AppendTag(update, fieldGroupDeleteMemb, protowire.BytesType)
	update = protowire.AppendBytes(update, del)

	var data []byte
	data = protowire.AppendTag(data, fieldDataGroupUpdate, protowire.BytesType)
	data = protowire.AppendBytes(data, update)

	var out []byte
	out = protowire.AppendTag(out, fieldDataMessage, protowire.BytesType)
	out = protowire.AppendBytes(out, data)
	out = protowire.AppendTag(out, fieldSigTimestamp, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(g.CreateAtNetworkTimestamp))
	return out
}

// DecodedContent subset of Content understood here
type DecodedContent struct {
	SigTimestamp        int64
	Unsend              *UnsendMessage
	DeleteMemberContent *GroupUpdateDeleteMemberContentMessage
}

// DecodeContent parse a payload produced by Encode
func DecodeContent(b []byte) (*DecodedContent, error) {
	out := &DecodedContent{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == fieldSigTimestamp && typ == protowire.VarintType:
			out.SigTimestamp = int64(n)
		case num == fieldUnsendMessage && typ == protowire.BytesType:
			u, err := decodeUnsend(v)
			if err != nil {
				return err
			}
			out.Unsend = u
		case num == fieldDataMessage && typ == protowire.BytesType:
			g, err := decodeDataMessage(v)
			if err != nil {
				return err
			}
			out.DeleteMemberContent = g
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Unsend != nil {
		out.Unsend.CreateAtNetworkTimestamp = out.SigTimestamp
	}
	if out.DeleteMemberContent != nil {
		out.DeleteMemberContent.CreateAtNetworkTimestamp = out.SigTimestamp
	}
	return out, nil
}

func decodeUnsend(b []byte) (*UnsendMessage, error) {
	u := &UnsendMessage{}
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch num {
		case fieldUnsendTimestamp:
			u.ReferencedMessageTimestamp = int64(n)
		case fieldUnsendAuthor:
			u.Author = string(v)
		}
		return nil
	})
	return u, err
}

func decodeDataMessage(b []byte) (*GroupUpdateDeleteMemberContentMessage, error) {
	var g *GroupUpdateDeleteMemberContentMessage
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if num != fieldDataGroupUpdate || typ != protowire.BytesType {
			return nil
		}
		return walk(v, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
			if num != fieldGroupDeleteMemb || typ != protowire.BytesType {
				return nil
			}
			g = &GroupUpdateDeleteMemberContentMessage{}
			return walk(v, func(num protowire.Number, _ protowire.Type, v []byte, _ uint64) error {
				switch num {
				case fieldDeleteMemberIDs:
					g.MemberSessionIDs = append(g.MemberSessionIDs, string(v))
				case fieldDeleteHashes:
					g.MessageHashes = append(g.MessageHashes, string(v))
				case fieldDeleteAdminSig:
					g.AdminSignature = append([]byte(nil), v...)
				}
				return nil
			})
		})
	})
	return g, err
}

// walk iterate over the top level fields of b, varints are passed as n, bytes as v
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error) error {
	for len(b) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedContent, protowire.ParseError(tagLen))
		}
		b = b[tagLen:]

		var (
			v []byte
			n uint64
			l int
		)
		switch typ {
		case protowire.VarintType:
			n, l = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			v, l = protowire.ConsumeBytes(b)
		default:
			l = protowire.ConsumeFieldValue(num, typ, b)
		}
		if l < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedContent, protowire.ParseError(l))
		}
		b = b[l:]

		if err := fn(num, typ, v, n); err != nil {
			return err
		}
	}
	return nil
}

// EnvelopeKind what a queued envelope carries
type EnvelopeKind string

const (
	// EnvelopeUnsend 1o1 or sync unsend request
	EnvelopeUnsend EnvelopeKind = "unsend"
	// EnvelopeGroupDeleteContent v2 group delete member content
	EnvelopeGroupDeleteContent EnvelopeKind = "group_delete_member_content"
)

// Envelope unit handed to the outbound transport
type Envelope struct {
	ID          string       `json:"id"`
	Kind        EnvelopeKind `json:"kind"`
	Destination string       `json:"destination"`
	Namespace   Namespace    `json:"namespace"`
	// Sync true when the copy goes to our own devices
	Sync      bool   `json:"sync"`
	Payload   []byte `json:"payload"`
	CreatedAt int64  `json:"created_at"`
}
