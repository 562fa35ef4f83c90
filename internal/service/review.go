// Package service holds the business rules of the LetterPlay API.
//
//	Handler (HTTP) → Service (rules) → Repository (SQL)
//
// Services accept primitives and return domain models or apperror values.
// They never see *http.Request and never pick status codes; the handler layer
// maps apperror sentinels to HTTP.
//
// Every service depends on repository interfaces, so tests pass in-memory
// fakes instead of a database.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
	"github.com/sakif/letterplay/internal/repository"
)

const (
	MinNota          = 1
	MaxNota          = 5
	MaxCommentLength = 2000
	RankingSize      = 10
)

// ReviewService manages game reviews ("avaliações"). A user has at most one
// review per game; posting again overwrites it.
type ReviewService struct {
	reviews repository.ReviewRepository
	games   repository.GameRepository
	logger  *slog.Logger
}

func NewReviewService(reviews repository.ReviewRepository, games repository.GameRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		games:   games,
		logger:  logger,
	}
}

// Create stores the user's review of a game. When the user already reviewed
// the game, the existing review's note and comment are replaced and its ID is
// kept.
func (s *ReviewService) Create(ctx context.Context, userID, gameID int64, nota int, comentario string) (*model.Review, error) {
	if nota < MinNota || nota > MaxNota {
		return nil, apperror.ValidationFailed("nota",
			fmt.Sprintf("nota must be between %d and %d", MinNota, MaxNota))
	}
	comentario = strings.TrimSpace(comentario)
	if utf8.RuneCountInString(comentario) > MaxCommentLength {
		return nil, apperror.ValidationFailed("comentario",
			fmt.Sprintf("comentario must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	existing, err := s.reviews.GetReviewByUserAndGame(ctx, userID, gameID)
	if err != nil {
		return nil, fmt.Errorf("looking up review: %w", err)
	}
	if existing != nil {
		return s.overwrite(ctx, existing, nota, comentario)
	}

	review := &model.Review{
		Nota:       nota,
		Comentario: comentario,
		GameID:     gameID,
		UserID:     userID,
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		// Another request inserted the user's first review in between.
		if errors.Is(err, apperror.ErrConflict) {
			existing, lookupErr := s.reviews.GetReviewByUserAndGame(ctx, userID, gameID)
			if lookupErr != nil {
				return nil, fmt.Errorf("looking up review: %w", lookupErr)
			}
			if existing != nil {
				return s.overwrite(ctx, existing, nota, comentario)
			}
		}
		s.logger.Error("failed to create review",
			slog.Int64("gameID", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating review: %w", err)
	}

	s.logger.Info("review created",
		slog.Int64("reviewID", review.ID),
		slog.Int64("gameID", gameID),
		slog.Int64("userID", userID),
	)
	return review, nil
}

func (s *ReviewService) overwrite(ctx context.Context, review *model.Review, nota int, comentario string) (*model.Review, error) {
	review.Nota = nota
	review.Comentario = comentario
	if err := s.reviews.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("updating review: %w", err)
	}
	s.logger.Info("review updated",
		slog.Int64("reviewID", review.ID),
		slog.Int64("gameID", review.GameID),
		slog.Int64("userID", review.UserID),
	)
	return review, nil
}

// ListByGame returns every review of the game and their average note rounded
// to one decimal place. The average of no reviews is 0.
func (s *ReviewService) ListByGame(ctx context.Context, gameID int64) (*model.ReviewList, error) {
	reviews, err := s.reviews.ListReviewsByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for game %d: %w", gameID, err)
	}

	list := &model.ReviewList{Items: reviews}
	if list.Items == nil {
		list.Items = []model.Review{}
	}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Nota
		}
		list.MediaNota = math.Round(float64(total)/float64(len(reviews))*10) / 10
	}
	return list, nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID int64) ([]model.Review, error) {
	reviews, err := s.reviews.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews of user %d: %w", userID, err)
	}
	return reviews, nil
}

// Delete removes a review. Only its author may delete it.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID int64) error {
	review, err := s.reviews.GetReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFoundMessage("Avaliação não encontrada")
		}
		return fmt.Errorf("getting review %d: %w", reviewID, err)
	}

	if review.UserID != userID {
		s.logger.Warn("review delete denied",
			slog.Int64("reviewID", reviewID),
			slog.Int64("userID", userID),
			slog.Int64("authorID", review.UserID),
		)
		return apperror.Forbidden("Acesso negado: Você não é o autor desta avaliação")
	}

	if err := s.reviews.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("deleting review %d: %w", reviewID, err)
	}

	s.logger.Info("review deleted", slog.Int64("reviewID", reviewID), slog.Int64("userID", userID))
	return nil
}

// Ranking returns the best rated games, highest average first.
func (s *ReviewService) Ranking(ctx context.Context) ([]model.RankedGame, error) {
	ranking, err := s.reviews.TopRatedGames(ctx, RankingSize)
	if err != nil {
		return nil, fmt.Errorf("building ranking: %w", err)
	}
	return ranking, nil
}
