package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
)

var _ repository.ReviewRepository = (*DB)(nil)

// CreateReview inserts a review and fills in its ID and timestamps.
// The UNIQUE(id_user, id_jogo) constraint surfaces as a Conflict.
func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO avaliacoes (nota, comentario, id_jogo, id_user, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		review.Nota, review.Comentario, review.GameID, review.UserID, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("review", fmt.Sprintf("user %d game %d", review.UserID, review.GameID))
		}
		return fmt.Errorf("sqlite: creating review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading review id: %w", err)
	}
	review.ID = id
	return nil
}

// UpdateReview overwrites the note and comment of an existing review.
func (db *DB) UpdateReview(ctx context.Context, review *model.Review) error {
	review.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE avaliacoes SET nota = ?, comentario = ?, updated_at = ? WHERE id_avaliacao = ?`,
		review.Nota, review.Comentario, review.UpdatedAt, review.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating review %d: %w", review.ID, err)
	}
	return requireAffected(result, "review", review.ID)
}

const reviewColumns = `a.id_avaliacao, a.nota, a.comentario, a.id_jogo, a.id_user, a.created_at, a.updated_at`

func scanReview(row rowScanner, extra ...any) (*model.Review, error) {
	var r model.Review
	dest := []any{&r.ID, &r.Nota, &r.Comentario, &r.GameID, &r.UserID, &r.CreatedAt, &r.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReviewByID returns apperror.ErrNotFound when the review doesn't exist.
func (db *DB) GetReviewByID(ctx context.Context, id int64) (*model.Review, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM avaliacoes a WHERE a.id_avaliacao = ?`, id)
	r, err := scanReview(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("review", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting review %d: %w", id, err)
	}
	return r, nil
}

// GetReviewByUserAndGame returns (nil, nil) when the user has not reviewed the game.
func (db *DB) GetReviewByUserAndGame(ctx context.Context, userID, gameID int64) (*model.Review, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM avaliacoes a WHERE a.id_user = ? AND a.id_jogo = ?`,
		userID, gameID)
	r, err := scanReview(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting review for user %d game %d: %w", userID, gameID, err)
	}
	return r, nil
}

// ListReviewsByGame returns the game's reviews with author usernames, oldest first.
func (db *DB) ListReviewsByGame(ctx context.Context, gameID int64) ([]model.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+`, u.username
		 FROM avaliacoes a
		 JOIN users u ON u.id = a.id_user
		 WHERE a.id_jogo = ?
		 ORDER BY a.created_at, a.id_avaliacao`, gameID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews for game %d: %w", gameID, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var username string
		r, err := scanReview(rows, &username)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		r.Username = username
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}
	return reviews, nil
}

// ListReviewsByUser returns a user's reviews with the reviewed game's title, newest first.
func (db *DB) ListReviewsByUser(ctx context.Context, userID int64) ([]model.Review, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+`, j.titulo
		 FROM avaliacoes a
		 JOIN jogos j ON j.id_jogo = a.id_jogo
		 WHERE a.id_user = ?
		 ORDER BY a.updated_at DESC, a.id_avaliacao DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews for user %d: %w", userID, err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var title string
		r, err := scanReview(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		r.GameTitle = title
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}
	return reviews, nil
}

func (db *DB) DeleteReview(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM avaliacoes WHERE id_avaliacao = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting review %d: %w", id, err)
	}
	return requireAffected(result, "review", id)
}

// TopRatedGames ranks reviewed games by average note. Ties are broken by the
// number of reviews, then by title.
func (db *DB) TopRatedGames(ctx context.Context, limit int) ([]model.RankedGame, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+`, AVG(a.nota) AS media, COUNT(a.id_avaliacao) AS total`+gameJoins+`
		 JOIN avaliacoes a ON a.id_jogo = j.id_jogo
		 GROUP BY j.id_jogo
		 ORDER BY media DESC, total DESC, j.titulo
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ranking games: %w", err)
	}

	type rankedRow struct {
		game  *model.CatalogGame
		media float64
		total int
	}
	var collected []rankedRow
	for rows.Next() {
		var (
			media float64
			total int
		)
		g, err := scanGame(rows, &media, &total)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning ranking row: %w", err)
		}
		collected = append(collected, rankedRow{game: g, media: media, total: total})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating ranking: %w", err)
	}
	// Close before the genre lookups; in-memory databases have a single connection.
	rows.Close()

	ranking := make([]model.RankedGame, 0, len(collected))
	for _, rr := range collected {
		genres, err := db.gameGenres(ctx, rr.game.ID)
		if err != nil {
			return nil, err
		}
		ranking = append(ranking, model.RankedGame{
			ID:             rr.game.ID,
			Titulo:         rr.game.Titulo,
			CapaURL:        rr.game.CapaURL,
			Generos:        genres,
			Media:          math.Round(rr.media*100) / 100,
			TotalReviews:   rr.total,
			Descricao:      rr.game.Descricao,
			Desenvolvedora: rr.game.Desenvolvedora,
			Publicadora:    rr.game.Publicadora,
		})
	}
	return ranking, nil
}

// requireAffected turns a zero-row UPDATE/DELETE into a NotFound error.
func requireAffected(result sql.Result, resource string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, strconv.FormatInt(id, 10))
	}
	return nil
}
