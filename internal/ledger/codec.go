package ledger

import (
	"errors"

	"github.com/rickgao/phantom-ledger/internal/kv"
	"github.com/rickgao/phantom-ledger/internal/model"
)

const (
	attrUserID          = "userId"
	attrGhostCountTotal = "ghostCountTotal"
	attrGhostCount30d   = "ghostCount30d"
	attrLastGhostAt     = "lastGhostAtEpochMs"
	attrStreakDays      = "streakDays"
	attrTopTags         = "topHesitationTags30d"
	attrTag             = "tag"
	attrCount           = "count"
)

// SummaryCodec maps a LedgerSummary to its DASH#SUMMARY item.
type SummaryCodec struct{}

// Encode implements kv.Codec.
func (SummaryCodec) Encode(s model.LedgerSummary) (kv.Item, error) {
	if s.UserID == "" {
		return kv.Item{}, errors.New("summary without user id")
	}

	tags := make([]any, 0, len(s.TopHesitationTags30d))
	for _, tc := range s.TopHesitationTags30d {
		tags = append(tags, map[string]any{attrTag: tc.Tag, attrCount: tc.Count})
	}

	attrs := kv.Attrs{
		attrUserID:          s.UserID,
		attrGhostCountTotal: s.GhostCountTotal,
		attrGhostCount30d:   s.GhostCount30d,
		attrStreakDays:      s.StreakDays,
		attrTopTags:         tags,
	}
	if s.LastGhostAt != nil {
		attrs[attrLastGhostAt] = *s.LastGhostAt
	}

	return kv.Item{
		PK:         model.UserPK(s.UserID),
		SK:         model.SummarySK,
		EntityType: model.EntityDashSummary,
		Attrs:      attrs,
	}, nil
}

// Decode implements kv.Codec.
func (SummaryCodec) Decode(item kv.Item) (model.LedgerSummary, error) {
	a := item.Attrs
	s := model.LedgerSummary{UserID: a.String(attrUserID)}

	var err error
	if s.GhostCountTotal, err = a.Int64(attrGhostCountTotal); err != nil {
		return model.LedgerSummary{}, err
	}
	if s.GhostCount30d, err = a.Int64(attrGhostCount30d); err != nil {
		return model.LedgerSummary{}, err
	}
	if s.LastGhostAt, err = a.Int64Ptr(attrLastGhostAt); err != nil {
		return model.LedgerSummary{}, err
	}
	if s.StreakDays, err = a.Int64(attrStreakDays); err != nil {
		return model.LedgerSummary{}, err
	}

	rows := a.List(attrTopTags)
	s.TopHesitationTags30d = make([]model.TagCount, 0, len(rows))
	for _, row := range rows {
		n, err := row.Int64(attrCount)
		if err != nil {
			return model.LedgerSummary{}, err
		}
		s.TopHesitationTags30d = append(s.TopHesitationTags30d, model.TagCount{Tag: row.String(attrTag), Count: n})
	}

	return s, nil
}
