// Package recruit は採用ポジションのドメインロジックを提供する。
package recruit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
	"github.com/jinbei222125-wq/wojp-corporate/internal/repository"
)

// Service は採用ポジションのサービス層。
// 公開サイト向けの読み取りと管理画面向けのCRUDを提供する。
type Service struct {
	positionRepo repository.JobPositionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(positionRepo repository.JobPositionRepository) *Service {
	return &Service{positionRepo: positionRepo}
}

// ListActive はアクティブな募集中ポジションを新しい順で返す。
// DB未接続時は空スライスに縮退する。
func (s *Service) ListActive(ctx context.Context) ([]*model.JobPosition, error) {
	return s.positionRepo.ListActive(ctx)
}

// GetByID はポジションを1件取得する。
// 一覧と異なり、非アクティブなポジションも取得できる。
// 募集停止後も応募ページへの直リンクを壊さないための仕様。
func (s *Service) GetByID(ctx context.Context, id int64) (*model.JobPosition, error) {
	position, err := s.positionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ポジションの取得に失敗しました: %w", err)
	}
	if position == nil {
		return nil, model.NewJobPositionNotFoundError(id)
	}
	return position, nil
}

// ListAll はアクティブ/非アクティブを問わず全ポジションを新しい順で返す。管理画面用。
func (s *Service) ListAll(ctx context.Context) ([]*model.JobPosition, error) {
	return s.positionRepo.ListAll(ctx)
}

// Create はポジションを作成し、作成されたポジションを返す。
// 新規ポジションは募集中（アクティブ）として作成される。
func (s *Service) Create(ctx context.Context, in model.JobPositionInput) (*model.JobPosition, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	if in.IsActive != model.FlagOff {
		in.IsActive = model.FlagOn
	}

	id, err := s.positionRepo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	slog.Info("job position created",
		slog.Int64("position_id", id),
		slog.String("position_name", in.PositionName),
	)

	position, err := s.positionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("作成したポジションの取得に失敗しました: %w", err)
	}
	if position == nil {
		return nil, fmt.Errorf("作成したポジションが見つかりません: id=%d", id)
	}
	return position, nil
}

// Update はポジションの指定フィールドのみを更新し、更新後のポジションを返す。
func (s *Service) Update(ctx context.Context, id int64, patch model.JobPositionPatch) (*model.JobPosition, error) {
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}

	if err := s.positionRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	position, err := s.positionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("更新したポジションの取得に失敗しました: %w", err)
	}
	if position == nil {
		return nil, model.NewJobPositionNotFoundError(id)
	}

	slog.Info("job position updated", slog.Int64("position_id", id))

	return position, nil
}

// Delete はポジションを削除する。存在しないIDの削除はエラーにしない（冪等）。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.positionRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("job position deleted", slog.Int64("position_id", id))
	return nil
}

// validateInput は作成時の入力を検証する。テキスト5項目はすべて必須。
func validateInput(in *model.JobPositionInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"ポジション名", in.PositionName},
		{"仕事内容", in.Description},
		{"応募要件", in.Requirements},
		{"勤務地", in.Location},
		{"給与", in.Salary},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return model.NewValidationError(f.name + "は必須です。")
		}
	}
	return nil
}

// validatePatch は更新時の入力を検証する。nilフィールドは検証対象にしない。
func validatePatch(patch *model.JobPositionPatch) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"ポジション名", patch.PositionName},
		{"仕事内容", patch.Description},
		{"応募要件", patch.Requirements},
		{"勤務地", patch.Location},
		{"給与", patch.Salary},
	}
	for _, f := range fields {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return model.NewValidationError(f.name + "は必須です。")
		}
	}
	if patch.IsActive != nil && *patch.IsActive != model.FlagOff && *patch.IsActive != model.FlagOn {
		return model.NewValidationError("募集フラグは0または1を指定してください。")
	}
	return nil
}
