package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/qiankun/internal/model"
)

var (
	// ErrHeroExists is returned when a hero name is already taken.
	ErrHeroExists = errors.New("db: hero name already taken")
	// ErrHeroNotFound is returned when no hero carries the given name.
	ErrHeroNotFound = errors.New("db: hero not found")
)

// HeroRepository manages hero rows and their learned techniques.
type HeroRepository struct {
	db *pgxpool.Pool
}

// NewHeroRepository creates a HeroRepository on the given pool.
func NewHeroRepository(pool *pgxpool.Pool) *HeroRepository {
	return &HeroRepository{db: pool}
}

// CreateHero inserts a new hero with its starting techniques and fills in
// the generated id and creation time.
func (r *HeroRepository) CreateHero(ctx context.Context, h *model.Hero) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "hero", h.Name, "err", err)
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO heroes (name, token_hash, path,
		                     strength, physique, agility,
		                     health, soul_health, weapons,
		                     location, last_safe_zone,
		                     combat_exp, spirit_stones, inventory, capacity, in_combat)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at`,
		h.Name, h.TokenHash, h.Path.String(),
		h.Stats.Strength, h.Stats.Physique, h.Stats.Agility,
		h.Health, h.SoulHealth, weaponNames(h.Weapons),
		h.Location, h.LastSafeZone,
		h.CombatExp, h.SpiritStones, inventoryOrEmpty(h.Inventory), h.Capacity, h.InCombat,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrHeroExists, h.Name)
		}
		return fmt.Errorf("inserting hero %q: %w", h.Name, err)
	}

	if err := replaceSkills(ctx, tx, h.ID, h.Skills); err != nil {
		return fmt.Errorf("inserting techniques for %q: %w", h.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing hero %q: %w", h.Name, err)
	}
	return nil
}

// HeroByName loads a full hero record including learned techniques, in
// the order they were learned.
func (r *HeroRepository) HeroByName(ctx context.Context, name string) (*model.Hero, error) {
	var (
		h       model.Hero
		path    string
		weapons []string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, name, token_hash, path,
		        strength, physique, agility,
		        health, soul_health, weapons,
		        location, last_safe_zone,
		        combat_exp, spirit_stones, inventory, capacity, in_combat, created_at
		 FROM heroes WHERE name = $1`, name,
	).Scan(&h.ID, &h.Name, &h.TokenHash, &path,
		&h.Stats.Strength, &h.Stats.Physique, &h.Stats.Agility,
		&h.Health, &h.SoulHealth, &weapons,
		&h.Location, &h.LastSafeZone,
		&h.CombatExp, &h.SpiritStones, &h.Inventory, &h.Capacity, &h.InCombat, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrHeroNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying hero %q: %w", name, err)
	}
	h.Path = model.ParseCultivationPath(path)
	h.Weapons = parseWeapons(weapons)

	rows, err := r.db.Query(ctx,
		`SELECT skill_key, proficiency FROM hero_skills
		 WHERE hero_id = $1 ORDER BY slot`, h.ID)
	if err != nil {
		return nil, fmt.Errorf("querying techniques of %q: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.HeroSkill
		if err := rows.Scan(&s.Key, &s.Proficiency); err != nil {
			return nil, fmt.Errorf("scanning technique of %q: %w", name, err)
		}
		h.Skills = append(h.Skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading techniques of %q: %w", name, err)
	}
	return &h, nil
}

// SetInCombat flips the hero's combat flag.
func (r *HeroRepository) SetInCombat(ctx context.Context, heroID int64, inCombat bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE heroes SET in_combat = $2 WHERE id = $1`, heroID, inCombat)
	if err != nil {
		return fmt.Errorf("updating combat flag of hero %d: %w", heroID, err)
	}
	return nil
}

// SaveBattleState writes everything a finished battle may have changed:
// pools, location, combat flag, exp, currency, inventory and technique
// proficiencies. Runs in one transaction.
func (r *HeroRepository) SaveBattleState(ctx context.Context, h *model.Hero) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "hero", h.Name, "err", err)
		}
	}()

	_, err = tx.Exec(ctx,
		`UPDATE heroes
		 SET health = $2, soul_health = $3,
		     location = $4, in_combat = $5,
		     combat_exp = $6, spirit_stones = $7, inventory = $8
		 WHERE id = $1`,
		h.ID, h.Health, h.SoulHealth,
		h.Location, h.InCombat,
		h.CombatExp, h.SpiritStones, inventoryOrEmpty(h.Inventory))
	if err != nil {
		return fmt.Errorf("updating hero %q: %w", h.Name, err)
	}

	if err := replaceSkills(ctx, tx, h.ID, h.Skills); err != nil {
		return fmt.Errorf("updating techniques of %q: %w", h.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing battle state of %q: %w", h.Name, err)
	}
	return nil
}

// HeroSummary is one roster line.
type HeroSummary struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Location  string    `json:"location"`
	CombatExp int64     `json:"combat_exp"`
	InCombat  bool      `json:"in_combat"`
	CreatedAt time.Time `json:"created_at"`
}

// ListHeroes returns the roster ordered by creation time.
func (r *HeroRepository) ListHeroes(ctx context.Context) ([]HeroSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, path, location, combat_exp, in_combat, created_at
		 FROM heroes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing heroes: %w", err)
	}
	defer rows.Close()

	var out []HeroSummary
	for rows.Next() {
		var s HeroSummary
		if err := rows.Scan(&s.Name, &s.Path, &s.Location, &s.CombatExp, &s.InCombat, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning hero summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading hero summaries: %w", err)
	}
	return out, nil
}

// replaceSkills rewrites the technique rows of one hero, preserving the
// learn order through the slot column.
func replaceSkills(ctx context.Context, tx pgx.Tx, heroID int64, skills []model.HeroSkill) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM hero_skills WHERE hero_id = $1`, heroID); err != nil {
		return fmt.Errorf("clearing techniques: %w", err)
	}
	for i, s := range skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO hero_skills (hero_id, skill_key, proficiency, slot)
			 VALUES ($1, $2, $3, $4)`,
			heroID, s.Key, s.Proficiency, i); err != nil {
			return fmt.Errorf("inserting technique %q: %w", s.Key, err)
		}
	}
	return nil
}

func weaponNames(weapons []model.WeaponType) []string {
	out := make([]string, 0, len(weapons))
	for _, w := range weapons {
		if w == model.WeaponNone {
			continue
		}
		out = append(out, w.String())
	}
	return out
}

func parseWeapons(names []string) []model.WeaponType {
	out := make([]model.WeaponType, 0, len(names))
	for _, n := range names {
		w, ok := model.ParseWeaponType(n)
		if !ok || w == model.WeaponNone {
			slog.Warn("dropping unknown weapon name from hero row", "name", n)
			continue
		}
		out = append(out, w)
	}
	return out
}

// inventoryOrEmpty keeps the jsonb column non-null for heroes that never
// picked anything up.
func inventoryOrEmpty(inv map[string]int) map[string]int {
	if inv == nil {
		return map[string]int{}
	}
	return inv
}
