// Package quest synthesizes quest offers from faction and alignment state.
package quest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
)

// Trigger records why a quest was generated.
type Trigger string

const (
	TriggerManual    Trigger = "manual"    // explicit player request
	TriggerThreshold Trigger = "threshold" // a reputation band was crossed
)

// Store persists generated quests and serves recent history for dedup.
type Store interface {
	SaveQuest(ctx context.Context, q *Quest) error
	RecentQuests(ctx context.Context, character string, n int) ([]*Quest, error)
}

// Tunable generation defaults.
const (
	DefaultTrustFloor    = -20.0 // minimum reputation for a faction to sponsor work
	DefaultHistoryWindow = 5     // recent quests consulted for repetition penalty
	repeatPenalty        = 0.25  // weight multiplier for recently used (sponsor, objective) pairs
	tagAffinityBonus     = 0.75  // additive weight per matching sponsor tag
	skewBias             = 1.5   // multiplier for objectives matching a strong moral lean
)

// tagAffinity maps a faction tag to the objectives it flavors.
var tagAffinity = map[string][]ObjectiveType{
	"military":     {ObjectiveElimination, ObjectiveInfiltration},
	"authority":    {ObjectiveNegotiation, ObjectiveElimination},
	"intelligence": {ObjectiveInfiltration, ObjectiveRetrieval},
	"insurgent":    {ObjectiveSabotage, ObjectiveInfiltration},
	"idealist":     {ObjectiveNegotiation, ObjectiveEscort},
	"sabotage":     {ObjectiveSabotage},
	"trade":        {ObjectiveRetrieval, ObjectiveEscort, ObjectiveNegotiation},
	"wealth":       {ObjectiveRetrieval},
	"security":     {ObjectiveEscort, ObjectiveElimination},
	"criminal":     {ObjectiveSabotage, ObjectiveElimination},
	"smuggling":    {ObjectiveRetrieval, ObjectiveEscort},
}

var lightObjectives = map[ObjectiveType]bool{
	ObjectiveNegotiation: true,
	ObjectiveEscort:      true,
}

var darkObjectives = map[ObjectiveType]bool{
	ObjectiveSabotage:    true,
	ObjectiveElimination: true,
}

// Generator synthesizes quest offers from the current faction registry,
// the character's alignment, and recent quest history. Selection is a
// weighted-scoring function over (sponsor, objective) pairs; the RNG is
// seedable so tests are reproducible.
type Generator struct {
	registry *faction.Registry
	tracker  *alignment.Tracker
	store    Store
	logger   *slog.Logger

	trustFloor    float64
	historyWindow int

	mu  sync.Mutex
	rng *rand.Rand

	titleCaser cases.Caser
}

// GenOption configures a Generator.
type GenOption func(*Generator)

// WithSeed fixes the RNG seed for reproducible generation.
func WithSeed(seed int64) GenOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithStore attaches quest persistence and history.
func WithStore(store Store) GenOption {
	return func(g *Generator) { g.store = store }
}

// WithTrustFloor overrides the minimum sponsor reputation.
func WithTrustFloor(floor float64) GenOption {
	return func(g *Generator) { g.trustFloor = floor }
}

// NewGenerator creates a quest generator over the given registry and tracker.
func NewGenerator(registry *faction.Registry, tracker *alignment.Tracker, logger *slog.Logger, opts ...GenOption) *Generator {
	g := &Generator{
		registry:      registry,
		tracker:       tracker,
		logger:        logger,
		trustFloor:    DefaultTrustFloor,
		historyWindow: DefaultHistoryWindow,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		titleCaser:    cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate synthesizes a quest offer for the character. It never
// dead-ends on gameplay state: if no faction meets the trust floor the
// least hostile faction sponsors anyway and the quest is marked degraded.
// It fails only when the registry is empty, which is a setup defect.
func (g *Generator) Generate(ctx context.Context, character string, trigger Trigger) (*Quest, error) {
	factions := g.registry.Snapshot()
	if len(factions) == 0 {
		return nil, faction.ErrNoFactionsRegistered
	}

	g.tracker.Register(character, 0)
	rec, err := g.tracker.Get(character)
	if err != nil {
		return nil, err
	}

	var recent []*Quest
	if g.store != nil {
		recent, err = g.store.RecentQuests(ctx, character, g.historyWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to load quest history: %w", err)
		}
	}

	sponsors, degraded := g.sponsorCandidates(factions)
	sponsor, objective := g.pick(sponsors, rec.Value, recent)

	risk := RiskFromAwareness(sponsor.Awareness)
	opponent := g.pickOpponent(sponsor, factions)

	q := &Quest{
		ID:        uuid.New(),
		Character: character,
		Title:     g.title(objective, sponsor, opponent),
		Sponsor:   sponsor.Key,
		Objective: objective,
		Risk:      risk,
		Reward:    g.reward(risk),
		State:     StateOffered,
		Degraded:  degraded,
		GeneratedFrom: Snapshot{
			SponsorReputation: sponsor.Reputation,
			SponsorAwareness:  sponsor.Awareness,
			Alignment:         rec.Value,
		},
		CreatedAt: time.Now().UTC(),
	}
	if opponent != nil {
		q.Opponent = opponent.Key
		q.GeneratedFrom.OpponentReputation = opponent.Reputation
		q.GeneratedFrom.OpponentAwareness = opponent.Awareness
	}

	if g.store != nil {
		if err := g.store.SaveQuest(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to save quest: %w", err)
		}
	}

	g.logger.Debug("Generated quest",
		"quest_id", q.ID,
		"character", character,
		"trigger", trigger,
		"sponsor", q.Sponsor,
		"objective", q.Objective,
		"risk", q.Risk.String(),
		"degraded", q.Degraded)

	return q, nil
}

// sponsorCandidates filters factions by the trust floor. When nothing
// qualifies it falls back to the least hostile faction and reports the
// result as degraded rather than failing.
func (g *Generator) sponsorCandidates(factions []*faction.Faction) ([]*faction.Faction, bool) {
	var candidates []*faction.Faction
	for _, f := range factions {
		if f.Reputation >= g.trustFloor {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) > 0 {
		return candidates, false
	}

	least := factions[0]
	for _, f := range factions[1:] {
		if f.Reputation > least.Reputation {
			least = f
		}
	}
	return []*faction.Faction{least}, true
}

type scored struct {
	sponsor   *faction.Faction
	objective ObjectiveType
	weight    float64
}

// pick runs the weighted selection over every (sponsor, objective) pair.
// Biases are soft: no pair ever drops to zero weight, so edge-case
// characters always have eligible quests.
func (g *Generator) pick(sponsors []*faction.Faction, align float64, recent []*Quest) (*faction.Faction, ObjectiveType) {
	pairs := make([]scored, 0, len(sponsors)*len(ObjectiveTypes))
	var total float64

	for _, s := range sponsors {
		// Friendlier sponsors offer work more readily.
		sponsorWeight := 1.0 + (s.Reputation-g.trustFloor)/(faction.ReputationMax-g.trustFloor)

		for _, obj := range ObjectiveTypes {
			w := 1.0
			for _, tag := range s.Tags {
				for _, flavored := range tagAffinity[tag] {
					if flavored == obj {
						w += tagAffinityBonus
					}
				}
			}
			if align >= alignment.StrongSkew && lightObjectives[obj] {
				w *= skewBias
			}
			if align <= -alignment.StrongSkew && darkObjectives[obj] {
				w *= skewBias
			}
			if recentlyUsed(recent, s.Key, obj) {
				w *= repeatPenalty
			}

			w *= sponsorWeight
			pairs = append(pairs, scored{sponsor: s, objective: obj, weight: w})
			total += w
		}
	}

	g.mu.Lock()
	roll := g.rng.Float64() * total
	g.mu.Unlock()

	for _, p := range pairs {
		roll -= p.weight
		if roll <= 0 {
			return p.sponsor, p.objective
		}
	}
	last := pairs[len(pairs)-1]
	return last.sponsor, last.objective
}

func recentlyUsed(recent []*Quest, sponsorKey string, obj ObjectiveType) bool {
	for _, q := range recent {
		if q.Sponsor == sponsorKey && q.Objective == obj {
			return true
		}
	}
	return false
}

// pickOpponent chooses the opposing faction: the sponsor's rival when one
// exists, otherwise the most hostile other faction, otherwise none.
func (g *Generator) pickOpponent(sponsor *faction.Faction, factions []*faction.Faction) *faction.Faction {
	if sponsor.Rival != "" {
		for _, f := range factions {
			if f.Key == sponsor.Rival {
				return f
			}
		}
	}

	var worst *faction.Faction
	for _, f := range factions {
		if f.Key == sponsor.Key {
			continue
		}
		if f.Reputation < 0 && (worst == nil || f.Reputation < worst.Reputation) {
			worst = f
		}
	}
	return worst
}

func (g *Generator) title(obj ObjectiveType, sponsor, opponent *faction.Faction) string {
	objName := g.titleCaser.String(string(obj))
	if opponent != nil {
		return fmt.Sprintf("%s: %s Operation Against the %s", sponsor.Name, objName, opponent.Name)
	}
	return fmt.Sprintf("%s: %s Contract", sponsor.Name, objName)
}

// reward scales with risk. Credits carry a small jitter so consecutive
// quests at the same tier don't pay identically.
func (g *Generator) reward(risk RiskTier) RewardProfile {
	g.mu.Lock()
	jitter := g.rng.Intn(200)
	g.mu.Unlock()

	tier := int(risk)
	r := RewardProfile{
		Credits:    400 + 350*tier + jitter,
		Reputation: float64(5 * (tier + 1)),
	}
	switch risk {
	case RiskHigh:
		r.Items = []string{"Upgraded blaster"}
	case RiskCritical:
		r.Items = []string{"Stealth field generator", "Ship upgrade components"}
	}
	return r
}
