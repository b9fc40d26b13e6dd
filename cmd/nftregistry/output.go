/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
	"gopkg.in/yaml.v3"

	"github.com/suparena/nftregistry/notify"
	"github.com/suparena/nftregistry/storagemodels"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

// print writes v to the command output in the selected format.
func (a *app) print(v any) error {
	switch a.output {
	case outputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		return enc.Close()
	}
}

// streamEncoder writes a sequence of values as they are produced.
type streamEncoder interface {
	Encode(v any) error
	Close() error
}

type jsonLines struct{ *json.Encoder }

func (jsonLines) Close() error { return nil }

// newStreamEncoder returns an encoder writing JSON Lines or a YAML document stream.
func (a *app) newStreamEncoder() streamEncoder {
	if a.output == outputJSON {
		return jsonLines{json.NewEncoder(a.out)}
	}
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	return enc
}

type assetView struct {
	ID      storagemodels.AssetID `json:"id" yaml:"id"`
	Owner   storagemodels.Address `json:"owner" yaml:"owner"`
	Creator storagemodels.Address `json:"creator" yaml:"creator"`
	URI     string                `json:"uri" yaml:"uri"`
}

type mintView struct {
	ID            storagemodels.AssetID        `json:"id" yaml:"id"`
	Notifications []storagemodels.Notification `json:"notifications" yaml:"notifications"`
}

type transferView struct {
	ID            storagemodels.AssetID        `json:"id" yaml:"id"`
	Owner         storagemodels.Address        `json:"owner" yaml:"owner"`
	Notifications []storagemodels.Notification `json:"notifications" yaml:"notifications"`
}

type royaltyView struct {
	ID  storagemodels.AssetID `json:"id" yaml:"id"`
	Pct uint64                `json:"pct" yaml:"pct"`
	Set bool                  `json:"set" yaml:"set"`
}

type paymentView struct {
	ID      storagemodels.AssetID `json:"id" yaml:"id"`
	Buyer   storagemodels.Address `json:"buyer" yaml:"buyer"`
	Creator storagemodels.Address `json:"creator" yaml:"creator"`
	Asset   storagemodels.Address `json:"asset" yaml:"asset"`
	Amount  string                `json:"amount" yaml:"amount"`
	Royalty string                `json:"royalty" yaml:"royalty"`
}

type balanceView struct {
	Asset  storagemodels.Address `json:"asset" yaml:"asset"`
	Holder storagemodels.Address `json:"holder" yaml:"holder"`
	Amount string                `json:"amount" yaml:"amount"`
}

type eventView struct {
	ID        string          `json:"id" yaml:"id"`
	Kind      string          `json:"kind" yaml:"kind"`
	Topics    []string        `json:"topics" yaml:"topics"`
	Payload   uint64          `json:"payload" yaml:"payload"`
	EmittedAt strfmt.DateTime `json:"emittedAt" yaml:"emittedAt"`
}

func newEventView(rec storagemodels.NotificationRecord) eventView {
	return eventView{
		ID:        rec.ID,
		Kind:      rec.Kind,
		Topics:    rec.Topics,
		Payload:   rec.Payload,
		EmittedAt: strfmt.DateTime(rec.EmittedAt.UTC()),
	}
}

// drain collects the notifications already delivered to sub.
func drain(sub <-chan notify.Delivery) []storagemodels.Notification {
	notes := []storagemodels.Notification{}
	for {
		select {
		case event, ok := <-sub:
			if !ok {
				return notes
			}
			notes = append(notes, event.Notification)
		default:
			return notes
		}
	}
}
