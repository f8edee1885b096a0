package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/facilidrive/facilidrive/pkg/models"
	"github.com/facilidrive/facilidrive/pkg/schemas"
	"github.com/stretchr/testify/suite"
)

type FolderServiceSuite struct {
	suite.Suite
	env *testEnv
	ctx context.Context
}

func (s *FolderServiceSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.ctx = context.Background()
}

func (s *FolderServiceSuite) TestCreateBuildsPathAndDepth() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	s.Equal("A", a.Path)
	s.Equal(1, a.Depth)

	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)
	s.Equal("A/B", b.Path)
	s.Equal(2, b.Depth)
	s.Equal(a.ID, *b.ParentID)
}

func (s *FolderServiceSuite) TestCreateRejectsInvalidName() {
	_, apperr := s.env.folders.CreateFolder(s.ctx, 1, 1, &schemas.FolderIn{Name: "bad/name"})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusBadRequest, apperr.Code)
}

func (s *FolderServiceSuite) TestCreateRejectsDuplicateSibling() {
	parent := s.env.mustCreateFolder(s.T(), 1, "Projects", nil)
	s.env.mustCreateFolder(s.T(), 1, "Reports", &parent.ID)

	_, apperr := s.env.folders.CreateFolder(s.ctx, 1, 1, &schemas.FolderIn{
		Name:     "Reports",
		ParentID: &parent.ID,
	})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusConflict, apperr.Code)

	// Same name under a different parent is fine.
	other := s.env.mustCreateFolder(s.T(), 1, "Archive", nil)
	out, apperr := s.env.folders.CreateFolder(s.ctx, 1, 1, &schemas.FolderIn{
		Name:     "Reports",
		ParentID: &other.ID,
	})
	s.Require().Nil(apperr)
	s.Equal("Archive/Reports", out.Path)
}

func (s *FolderServiceSuite) TestCreateRejectsDuplicateAtRoot() {
	s.env.mustCreateFolder(s.T(), 1, "Docs", nil)
	_, apperr := s.env.folders.CreateFolder(s.ctx, 1, 1, &schemas.FolderIn{Name: "Docs"})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusConflict, apperr.Code)
}

func (s *FolderServiceSuite) TestCreateEnforcesDepthLimit() {
	s.env.cnf.Drive.MaxDepth = 3

	a := s.env.mustCreateFolder(s.T(), 1, "L1", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "L2", &a.ID)
	c := s.env.mustCreateFolder(s.T(), 1, "L3", &b.ID)

	_, apperr := s.env.folders.CreateFolder(s.ctx, 1, 1, &schemas.FolderIn{
		Name:     "L4",
		ParentID: &c.ID,
	})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusBadRequest, apperr.Code)
}

func (s *FolderServiceSuite) TestCreateInheritsParentCategory() {
	a := s.env.mustCreateFolder(s.T(), 1, "電気設備", nil)
	_, apperr := s.env.category.TagSubtree(s.ctx, 1, &schemas.TagSubtree{
		RootID:   a.ID,
		Category: "lifeline_electrical",
	})
	s.Require().Nil(apperr)

	b := s.env.mustCreateFolder(s.T(), 1, "点検記録", &a.ID)
	s.Equal("lifeline_electrical", b.Category)
}

func (s *FolderServiceSuite) TestRenamePropagatesDescendantPaths() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)
	c := s.env.mustCreateFolder(s.T(), 1, "C", &b.ID)

	out, apperr := s.env.folders.RenameFolder(s.ctx, 1, a.ID, &schemas.FolderRename{Name: "A2"})
	s.Require().Nil(apperr)
	s.Equal("A2", out.Path)

	got, apperr := s.env.folders.GetFolder(s.ctx, 1, b.ID)
	s.Require().Nil(apperr)
	s.Equal("A2/B", got.Path)

	got, apperr = s.env.folders.GetFolder(s.ctx, 1, c.ID)
	s.Require().Nil(apperr)
	s.Equal("A2/B/C", got.Path)
}

func (s *FolderServiceSuite) TestRenameRejectsSiblingCollision() {
	s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", nil)

	_, apperr := s.env.folders.RenameFolder(s.ctx, 1, b.ID, &schemas.FolderRename{Name: "A"})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusConflict, apperr.Code)
}

func (s *FolderServiceSuite) TestMoveRejectsCycle() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)
	c := s.env.mustCreateFolder(s.T(), 1, "C", &b.ID)

	_, apperr := s.env.folders.MoveFolder(s.ctx, 1, a.ID, &schemas.FolderMove{ParentID: &c.ID})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusBadRequest, apperr.Code)

	_, apperr = s.env.folders.MoveFolder(s.ctx, 1, a.ID, &schemas.FolderMove{ParentID: &a.ID})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusBadRequest, apperr.Code)

	// Tree unchanged after the rejected moves.
	got, apperr := s.env.folders.GetFolder(s.ctx, 1, a.ID)
	s.Require().Nil(apperr)
	s.Nil(got.ParentID)
	s.Equal("A", got.Path)
	got, apperr = s.env.folders.GetFolder(s.ctx, 1, c.ID)
	s.Require().Nil(apperr)
	s.Equal("A/B/C", got.Path)
}

func (s *FolderServiceSuite) TestMoveRewritesSubtreePathsAndDepths() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)
	c := s.env.mustCreateFolder(s.T(), 1, "C", &b.ID)
	dest := s.env.mustCreateFolder(s.T(), 1, "Dest", nil)

	out, apperr := s.env.folders.MoveFolder(s.ctx, 1, b.ID, &schemas.FolderMove{ParentID: &dest.ID})
	s.Require().Nil(apperr)
	s.Equal("Dest/B", out.Path)
	s.Equal(2, out.Depth)

	got, apperr := s.env.folders.GetFolder(s.ctx, 1, c.ID)
	s.Require().Nil(apperr)
	s.Equal("Dest/B/C", got.Path)
	s.Equal(3, got.Depth)
}

func (s *FolderServiceSuite) TestMoveToRootClearsCategory() {
	root := s.env.mustCreateFolder(s.T(), 1, "ガス設備", nil)
	_, apperr := s.env.category.TagSubtree(s.ctx, 1, &schemas.TagSubtree{
		RootID:   root.ID,
		Category: "lifeline_gas",
	})
	s.Require().Nil(apperr)
	child := s.env.mustCreateFolder(s.T(), 1, "契約書", &root.ID)
	s.Equal("lifeline_gas", child.Category)

	out, apperr := s.env.folders.MoveFolder(s.ctx, 1, child.ID, &schemas.FolderMove{ParentID: nil})
	s.Require().Nil(apperr)
	s.Empty(out.Category)
	s.Equal("契約書", out.Path)
	s.Equal(1, out.Depth)
}

func (s *FolderServiceSuite) TestMoveRepropagatesCategoryToSubtreeAndFiles() {
	gas := s.env.mustCreateFolder(s.T(), 1, "Gas", nil)
	_, apperr := s.env.category.TagSubtree(s.ctx, 1, &schemas.TagSubtree{RootID: gas.ID, Category: "lifeline_gas"})
	s.Require().Nil(apperr)

	water := s.env.mustCreateFolder(s.T(), 1, "Water", nil)
	_, apperr = s.env.category.TagSubtree(s.ctx, 1, &schemas.TagSubtree{RootID: water.ID, Category: "lifeline_water"})
	s.Require().Nil(apperr)

	sub := s.env.mustCreateFolder(s.T(), 1, "Meters", &gas.ID)
	file := s.env.mustUpload(s.T(), 1, &sub.ID, "readings.pdf", "data")
	s.Equal("lifeline_gas", file.Category)

	_, apperr = s.env.folders.MoveFolder(s.ctx, 1, sub.ID, &schemas.FolderMove{ParentID: &water.ID})
	s.Require().Nil(apperr)

	var got models.File
	s.Require().NoError(s.env.db.First(&got, "id = ?", file.ID).Error)
	s.Require().NotNil(got.Category)
	s.Equal("lifeline_water", got.Category.String())
}

func (s *FolderServiceSuite) TestMoveEnforcesDepthForSubtreeHeight() {
	s.env.cnf.Drive.MaxDepth = 3

	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)
	s.env.mustCreateFolder(s.T(), 1, "C", &b.ID)
	dest := s.env.mustCreateFolder(s.T(), 1, "Dest", nil)

	// Moving A under Dest would push C to depth 4.
	_, apperr := s.env.folders.MoveFolder(s.ctx, 1, a.ID, &schemas.FolderMove{ParentID: &dest.ID})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusBadRequest, apperr.Code)
}

func (s *FolderServiceSuite) TestTenancyHidesForeignFolders() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)

	_, apperr := s.env.folders.GetFolder(s.ctx, 2, a.ID)
	s.Require().NotNil(apperr)
	s.Equal(http.StatusNotFound, apperr.Code)

	_, apperr = s.env.folders.RenameFolder(s.ctx, 2, a.ID, &schemas.FolderRename{Name: "X"})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusNotFound, apperr.Code)

	// Identical sibling names are allowed across facilities.
	out, apperr := s.env.folders.CreateFolder(s.ctx, 2, 1, &schemas.FolderIn{Name: "A"})
	s.Require().Nil(apperr)
	s.Equal("A", out.Path)
}

func (s *FolderServiceSuite) TestMalformedIDReadsAsNotFound() {
	_, apperr := s.env.folders.GetFolder(s.ctx, 1, "not-a-uuid")
	s.Require().NotNil(apperr)
	s.Equal(http.StatusNotFound, apperr.Code)

	_, apperr = s.env.folders.RenameFolder(s.ctx, 1, "' OR 1=1 --", &schemas.FolderRename{Name: "X"})
	s.Require().NotNil(apperr)
	s.Equal(http.StatusNotFound, apperr.Code)
}

func (s *FolderServiceSuite) TestListChildrenSorted() {
	parent := s.env.mustCreateFolder(s.T(), 1, "Root", nil)
	s.env.mustCreateFolder(s.T(), 1, "Zulu", &parent.ID)
	s.env.mustCreateFolder(s.T(), 1, "Alpha", &parent.ID)

	res, apperr := s.env.folders.ListChildren(s.ctx, 1, &parent.ID)
	s.Require().Nil(apperr)
	s.Require().Len(res.Folders, 2)
	s.Equal("Alpha", res.Folders[0].Name)
	s.Equal("Zulu", res.Folders[1].Name)
}

func (s *FolderServiceSuite) TestListSubtreeShallowestFirst() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)
	s.env.mustCreateFolder(s.T(), 1, "C", &b.ID)

	res, apperr := s.env.folders.ListSubtree(s.ctx, 1, a.ID)
	s.Require().Nil(apperr)
	s.Require().Len(res.Folders, 3)
	s.Equal("A", res.Folders[0].Path)
	s.Equal("A/B", res.Folders[1].Path)
	s.Equal("A/B/C", res.Folders[2].Path)
}

func (s *FolderServiceSuite) TestBreadcrumb() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)
	c := s.env.mustCreateFolder(s.T(), 1, "C", &b.ID)

	out, apperr := s.env.folders.Breadcrumb(s.ctx, 1, c.ID)
	s.Require().Nil(apperr)
	s.Equal("A/B/C", out.Path)
	s.Require().Len(out.Segments, 3)
	s.Equal("A", out.Segments[0].Name)
	s.Equal("B", out.Segments[1].Name)
	s.Equal("C", out.Segments[2].Name)
	s.Equal(a.ID, out.Segments[0].ID)
}

func (s *FolderServiceSuite) TestGetFolderServesCommittedStateAfterRename() {
	a := s.env.mustCreateFolder(s.T(), 1, "A", nil)
	b := s.env.mustCreateFolder(s.T(), 1, "B", &a.ID)

	// Warm the cache.
	got, apperr := s.env.folders.GetFolder(s.ctx, 1, b.ID)
	s.Require().Nil(apperr)
	s.Equal("A/B", got.Path)

	_, apperr = s.env.folders.RenameFolder(s.ctx, 1, a.ID, &schemas.FolderRename{Name: "A2"})
	s.Require().Nil(apperr)

	got, apperr = s.env.folders.GetFolder(s.ctx, 1, b.ID)
	s.Require().Nil(apperr)
	s.Equal("A2/B", got.Path)
}

func TestFolderServiceSuite(t *testing.T) {
	suite.Run(t, new(FolderServiceSuite))
}
