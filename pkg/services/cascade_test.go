package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/stretchr/testify/suite"
)

type CascadeSuite struct {
	suite.Suite
	env *testEnv
	ctx context.Context
}

func (s *CascadeSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.ctx = context.Background()
}

func (s *CascadeSuite) TestDeleteRemovesSubtreeAndObjects() {
	docs := s.env.mustCreateFolder(s.T(), 1, "Docs", nil)
	sub := s.env.mustCreateFolder(s.T(), 1, "2024", &docs.ID)
	s.env.mustUpload(s.T(), 1, &docs.ID, "a.pdf", "a")
	s.env.mustUpload(s.T(), 1, &docs.ID, "b.pdf", "b")
	s.env.mustUpload(s.T(), 1, &sub.ID, "c.pdf", "c")

	res, apperr := s.env.folders.DeleteFolderSubtree(s.ctx, 1, docs.ID)
	s.Require().Nil(apperr)
	s.Equal(int64(2), res.Folders)
	s.Equal(int64(3), res.Files)
	s.Empty(res.Warnings)

	var folders, files int64
	s.Require().NoError(s.env.db.Model(&models.Folder{}).Count(&folders).Error)
	s.Require().NoError(s.env.db.Model(&models.File{}).Count(&files).Error)
	s.Equal(int64(0), folders)
	s.Equal(int64(0), files)
	s.Equal(0, s.env.store.Len())
}

func (s *CascadeSuite) TestDeleteLeavesSiblingsUntouched() {
	docs := s.env.mustCreateFolder(s.T(), 1, "Docs", nil)
	keep := s.env.mustCreateFolder(s.T(), 1, "Keep", nil)
	s.env.mustUpload(s.T(), 1, &keep.ID, "keep.pdf", "k")
	s.env.mustUpload(s.T(), 1, &docs.ID, "gone.pdf", "g")

	_, apperr := s.env.folders.DeleteFolderSubtree(s.ctx, 1, docs.ID)
	s.Require().Nil(apperr)

	got, apperr := s.env.folders.GetFolder(s.ctx, 1, keep.ID)
	s.Require().Nil(apperr)
	s.Equal("Keep", got.Path)
	s.Equal(1, s.env.store.Len())
}

func (s *CascadeSuite) TestDeleteQueuesFailedPhysicalDeletes() {
	docs := s.env.mustCreateFolder(s.T(), 1, "Docs", nil)
	ok := s.env.mustUpload(s.T(), 1, &docs.ID, "ok.pdf", "a")
	stuck := s.env.mustUpload(s.T(), 1, &docs.ID, "stuck.pdf", "b")

	var stuckRow models.File
	s.Require().NoError(s.env.db.First(&stuckRow, "id = ?", stuck.ID).Error)
	s.env.store.FailDelete[stuckRow.FilePath] = errors.New("endpoint down")

	res, apperr := s.env.folders.DeleteFolderSubtree(s.ctx, 1, docs.ID)
	s.Require().Nil(apperr)
	s.Equal(int64(1), res.Folders)
	s.Equal(int64(2), res.Files)
	s.Require().Len(res.Warnings, 1)
	s.Contains(res.Warnings[0], "stuck.pdf")

	// Metadata is gone for both files; only the stuck key is queued.
	var files int64
	s.Require().NoError(s.env.db.Model(&models.File{}).Count(&files).Error)
	s.Equal(int64(0), files)

	var cleanups []models.StorageCleanup
	s.Require().NoError(s.env.db.Find(&cleanups).Error)
	s.Require().Len(cleanups, 1)
	s.Equal(stuckRow.FilePath, cleanups[0].StorageKey)
	s.Equal("endpoint down", cleanups[0].LastError)

	var okRow models.File
	s.Require().Error(s.env.db.First(&okRow, "id = ?", ok.ID).Error)
}

func (s *CascadeSuite) TestDeleteTenancyScoped() {
	docs := s.env.mustCreateFolder(s.T(), 1, "Docs", nil)

	_, apperr := s.env.folders.DeleteFolderSubtree(s.ctx, 2, docs.ID)
	s.Require().NotNil(apperr)
	s.Equal(http.StatusNotFound, apperr.Code)

	got, apperr := s.env.folders.GetFolder(s.ctx, 1, docs.ID)
	s.Require().Nil(apperr)
	s.Equal("Docs", got.Path)
}

func (s *CascadeSuite) TestDeleteCancelledBeforeMetadataKeepsTree() {
	docs := s.env.mustCreateFolder(s.T(), 1, "Docs", nil)
	s.env.mustUpload(s.T(), 1, &docs.ID, "a.pdf", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, apperr := s.env.folders.DeleteFolderSubtree(ctx, 1, docs.ID)
	s.Require().NotNil(apperr)

	var folders int64
	s.Require().NoError(s.env.db.Model(&models.Folder{}).Count(&folders).Error)
	s.Equal(int64(1), folders)
}

func TestCascadeSuite(t *testing.T) {
	suite.Run(t, new(CascadeSuite))
}
