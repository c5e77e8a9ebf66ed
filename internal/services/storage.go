package services

import (
	"context"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
)

// Storage persists simulation state between runs. The in-memory registry
// and tracker are the live ground truth; storage mirrors them and feeds
// them back at startup.
//
// Storage satisfies reputation.StateSink and quest.Store.
type Storage interface {
	SaveFaction(ctx context.Context, f *faction.Faction) error
	LoadFactions(ctx context.Context) ([]*faction.Faction, error)

	SaveAlignment(ctx context.Context, rec *alignment.Record) error
	LoadAlignments(ctx context.Context) ([]*alignment.Record, error)

	SaveQuest(ctx context.Context, q *quest.Quest) error
	RecentQuests(ctx context.Context, character string, n int) ([]*quest.Quest, error)

	Ping(ctx context.Context) error
	Close() error
}
