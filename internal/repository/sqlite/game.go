package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
)

var _ repository.GameRepository = (*DB)(nil)

// gameColumns selects a jogos row together with its developer and publisher.
// Companies are LEFT JOINed so games without them still load.
const gameColumns = `
	j.id_jogo, j.titulo, j.descricao, j.capa_url, j.nota_metacritic, j.data_lancamento,
	d.id_empresa, d.nome, p.id_empresa, p.nome`

const gameJoins = `
	FROM jogos j
	LEFT JOIN empresas d ON d.id_empresa = j.id_desenvolvedora
	LEFT JOIN empresas p ON p.id_empresa = j.id_publicadora`

// CreateGame stores a catalog game in one transaction. Companies and genres are
// looked up by name and inserted when missing.
func (db *DB) CreateGame(ctx context.Context, in repository.GameInput) (*model.CatalogGame, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning game transaction: %w", err)
	}
	defer tx.Rollback()

	devID, err := findOrCreateCompany(ctx, tx, in.Desenvolvedora)
	if err != nil {
		return nil, err
	}
	pubID, err := findOrCreateCompany(ctx, tx, in.Publicadora)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO jogos (titulo, descricao, capa_url, nota_metacritic, data_lancamento, id_desenvolvedora, id_publicadora)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Titulo, in.Descricao, in.CapaURL, nullableInt(in.NotaMetacritic), in.DataLancamento, devID, pubID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting game %q: %w", in.Titulo, err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading game id: %w", err)
	}

	for i, url := range in.Screenshots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO screenshots (id_jogo, url, posicao) VALUES (?, ?, ?)`,
			gameID, url, i,
		); err != nil {
			return nil, fmt.Errorf("sqlite: inserting screenshot for game %d: %w", gameID, err)
		}
	}

	for _, name := range in.Generos {
		genreID, err := findOrCreateGenre(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		if !genreID.Valid {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO jogo_generos (id_jogo, id_genero) VALUES (?, ?)`,
			gameID, genreID.Int64,
		); err != nil {
			return nil, fmt.Errorf("sqlite: linking genre to game %d: %w", gameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing game %d: %w", gameID, err)
	}

	return db.GetGame(ctx, gameID)
}

// GetGame loads a game with its companies, genres and screenshots.
func (db *DB) GetGame(ctx context.Context, id int64) (*model.CatalogGame, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+gameColumns+gameJoins+` WHERE j.id_jogo = ?`, id)

	g, err := scanGame(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("game", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting game %d: %w", id, err)
	}

	if err := db.loadGameDetails(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListGames returns games ordered by title.
func (db *DB) ListGames(ctx context.Context, opts repository.ListOptions) ([]model.CatalogGame, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := max(opts.Offset, 0)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+gameJoins+` ORDER BY j.titulo LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing games: %w", err)
	}
	games, err := collectGames(rows)
	if err != nil {
		return nil, err
	}

	for i := range games {
		if err := db.loadGameDetails(ctx, &games[i]); err != nil {
			return nil, err
		}
	}
	return games, nil
}

// loadGameDetails fills the one-to-many parts of a game.
func (db *DB) loadGameDetails(ctx context.Context, g *model.CatalogGame) error {
	genres, err := db.gameGenres(ctx, g.ID)
	if err != nil {
		return err
	}
	g.Generos = genres

	rows, err := db.conn.QueryContext(ctx,
		`SELECT url FROM screenshots WHERE id_jogo = ? ORDER BY posicao, id_screenshot`, g.ID)
	if err != nil {
		return fmt.Errorf("sqlite: listing screenshots for game %d: %w", g.ID, err)
	}
	defer rows.Close()

	g.Screenshots = []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return fmt.Errorf("sqlite: scanning screenshot: %w", err)
		}
		g.Screenshots = append(g.Screenshots, url)
	}
	return rows.Err()
}

func (db *DB) gameGenres(ctx context.Context, gameID int64) ([]model.Genre, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT g.id_genero, g.nome_genero
		 FROM generos g
		 JOIN jogo_generos jg ON jg.id_genero = g.id_genero
		 WHERE jg.id_jogo = ?
		 ORDER BY g.nome_genero`, gameID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing genres for game %d: %w", gameID, err)
	}
	defer rows.Close()

	genres := []model.Genre{}
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(&genre.ID, &genre.NomeGenero); err != nil {
			return nil, fmt.Errorf("sqlite: scanning genre: %w", err)
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner, extra ...any) (*model.CatalogGame, error) {
	var (
		g                model.CatalogGame
		metacritic       sql.NullInt64
		devID, pubID     sql.NullInt64
		devName, pubName sql.NullString
	)
	dest := []any{
		&g.ID, &g.Titulo, &g.Descricao, &g.CapaURL, &metacritic, &g.DataLancamento,
		&devID, &devName, &pubID, &pubName,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if metacritic.Valid {
		v := int(metacritic.Int64)
		g.NotaMetacritic = &v
	}
	if devID.Valid {
		g.Desenvolvedora = &model.Company{ID: devID.Int64, Nome: devName.String}
	}
	if pubID.Valid {
		g.Publicadora = &model.Company{ID: pubID.Int64, Nome: pubName.String}
	}
	return &g, nil
}

func collectGames(rows *sql.Rows) ([]model.CatalogGame, error) {
	defer rows.Close()

	games := []model.CatalogGame{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}
	return games, nil
}

func findOrCreateCompany(ctx context.Context, tx *sql.Tx, name string) (sql.NullInt64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sql.NullInt64{}, nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO empresas (nome) VALUES (?)`, name); err != nil {
		return sql.NullInt64{}, fmt.Errorf("sqlite: inserting company %q: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id_empresa FROM empresas WHERE nome = ?`, name).Scan(&id); err != nil {
		return sql.NullInt64{}, fmt.Errorf("sqlite: looking up company %q: %w", name, err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func findOrCreateGenre(ctx context.Context, tx *sql.Tx, name string) (sql.NullInt64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sql.NullInt64{}, nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO generos (nome_genero) VALUES (?)`, name); err != nil {
		return sql.NullInt64{}, fmt.Errorf("sqlite: inserting genre %q: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id_genero FROM generos WHERE nome_genero = ?`, name).Scan(&id); err != nil {
		return sql.NullInt64{}, fmt.Errorf("sqlite: looking up genre %q: %w", name, err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
