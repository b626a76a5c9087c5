package sql

import (
	"context"
	"fmt"

	"github.com/anggol23/Be-Resonansi/internal/entity/db"
)

// blobColumns are left out of list queries so listing never loads file bytes.
var blobColumns = []string{"content_blob", "image_blob"}

func (r *GormRepository) CreateFile(ctx context.Context, file *db.UploadedFile) error {
	if err := r.ready(); err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("file is nil")
	}
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *GormRepository) GetFile(ctx context.Context, id uint) (*db.UploadedFile, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var file db.UploadedFile
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *GormRepository) ListFiles(ctx context.Context) ([]db.UploadedFile, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var files []db.UploadedFile
	err := r.db.WithContext(ctx).Omit(blobColumns...).Order("created_at DESC").Order("id DESC").Find(&files).Error
	return files, err
}

func (r *GormRepository) DeleteFile(ctx context.Context, id uint) error {
	if err := r.ready(); err != nil {
		return err
	}
	return affected(r.db.WithContext(ctx).Delete(&db.UploadedFile{}, id))
}
