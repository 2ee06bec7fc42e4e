package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"staff-attendance/internal/model"
	"staff-attendance/internal/permission"
)

const testMaxCV = 1024

func newTestCvService() (*cvService, *testRepos, *memBlobStore) {
	repo, m := newTestRepos()
	blobs := newMemBlobStore()
	svc := NewCvService(repo, blobs, testMaxCV, zap.NewNop()).(*cvService)
	return svc, m, blobs
}

func upload(name, body string) *CvUpload {
	return &CvUpload{FileName: name, ContentType: "application/pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestCvService_Upload_ReplacesPrevious(t *testing.T) {
	svc, m, blobs := newTestCvService()
	ctx := context.Background()

	first, err := svc.Upload(ctx, "t1", upload("old.pdf", "old content"))
	if err != nil {
		t.Fatalf("首次上传失败: %v", err)
	}
	oldKey := m.cv.files["t1"].StorageKey

	second, err := svc.Upload(ctx, "t1", upload("new.pdf", "new content"))
	if err != nil {
		t.Fatalf("再次上传失败: %v", err)
	}

	if len(m.cv.files) != 1 {
		t.Fatalf("期望 1 条简历记录，实际 %d", len(m.cv.files))
	}
	row := m.cv.files["t1"]
	if row.OriginalName != "new.pdf" || row.StorageKey == oldKey {
		t.Errorf("记录应引用新文件: %+v", row)
	}
	if second.ID == first.ID {
		t.Errorf("替换后应生成新的简历 ID: %s", second.ID)
	}
	if _, _, err := svc.Open(ctx, "t1", model.RoleTeacher, first.ID); !errors.Is(err, ErrCvNotFound) {
		t.Errorf("旧 ID 的下载应返回 ErrCvNotFound，实际 %v", err)
	}
	if _, ok := blobs.blobs[oldKey]; ok {
		t.Error("旧文件应在替换后删除")
	}
	if len(blobs.blobs) != 1 {
		t.Errorf("存储中应只剩 1 个文件，实际 %d", len(blobs.blobs))
	}
}

func TestCvService_Upload_OldBlobCleanupFailureIgnored(t *testing.T) {
	svc, m, blobs := newTestCvService()
	ctx := context.Background()
	if _, err := svc.Upload(ctx, "t1", upload("a.pdf", "aaa")); err != nil {
		t.Fatalf("首次上传失败: %v", err)
	}
	blobs.deleteErr = errors.New("disk busy")

	if _, err := svc.Upload(ctx, "t1", upload("b.pdf", "bbb")); err != nil {
		t.Fatalf("旧文件删除失败不应影响上传: %v", err)
	}
	if m.cv.files["t1"].OriginalName != "b.pdf" {
		t.Error("记录应已替换为新文件")
	}
}

func TestCvService_Upload_SizeLimits(t *testing.T) {
	svc, m, blobs := newTestCvService()
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "t1", upload("empty.pdf", "")); !errors.Is(err, ErrCvEmpty) {
		t.Errorf("空文件期望 ErrCvEmpty，实际: %v", err)
	}
	big := strings.Repeat("x", testMaxCV+1)
	if _, err := svc.Upload(ctx, "t1", upload("big.pdf", big)); !errors.Is(err, ErrCvTooLarge) {
		t.Errorf("超限期望 ErrCvTooLarge，实际: %v", err)
	}

	// 声明大小与实际内容不符时按实际字节数复核
	lying := &CvUpload{FileName: "lie.pdf", Size: 10, Body: strings.NewReader(big)}
	if _, err := svc.Upload(ctx, "t1", lying); !errors.Is(err, ErrCvTooLarge) {
		t.Errorf("实际超限期望 ErrCvTooLarge，实际: %v", err)
	}
	if len(m.cv.files) != 0 || len(blobs.blobs) != 0 {
		t.Error("被拒绝的上传不应留下记录或文件")
	}
}

func TestCvService_Upload_DBFailureRemovesNewBlob(t *testing.T) {
	svc, m, blobs := newTestCvService()
	m.cv.err = errors.New("db down")

	if _, err := svc.Upload(context.Background(), "t1", upload("a.pdf", "aaa")); err == nil {
		t.Fatal("期望返回错误")
	}
	if len(blobs.blobs) != 0 {
		t.Error("写库失败时应删除刚保存的文件")
	}
}

func TestCvService_Open_Permissions(t *testing.T) {
	svc, _, _ := newTestCvService()
	ctx := context.Background()
	cv, err := svc.Upload(ctx, "t1", upload("cv.pdf", "hello"))
	if err != nil {
		t.Fatalf("上传失败: %v", err)
	}

	_, rc, err := svc.Open(ctx, "t1", model.RoleTeacher, cv.ID)
	if err != nil {
		t.Fatalf("本人读取失败: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "hello" {
		t.Errorf("内容不一致: %q", data)
	}

	if _, _, err := svc.Open(ctx, "h1", model.RoleHead, cv.ID); err != nil {
		t.Errorf("head 应可读取任意简历: %v", err)
	}
	if _, _, err := svc.Open(ctx, "t2", model.RoleTeacher, cv.ID); !errors.Is(err, permission.ErrForbidden) {
		t.Errorf("他人读取期望 ErrForbidden，实际: %v", err)
	}
}

func TestCvService_Delete_OwnerOnly(t *testing.T) {
	svc, m, blobs := newTestCvService()
	ctx := context.Background()
	cv, _ := svc.Upload(ctx, "t1", upload("cv.pdf", "hello"))

	if err := svc.Delete(ctx, "h1", cv.ID); !errors.Is(err, permission.ErrForbidden) {
		t.Errorf("非本人删除期望 ErrForbidden，实际: %v", err)
	}
	if err := svc.Delete(ctx, "t1", cv.ID); err != nil {
		t.Fatalf("本人删除失败: %v", err)
	}
	if len(m.cv.files) != 0 || len(blobs.blobs) != 0 {
		t.Error("删除后不应留下记录或文件")
	}
	if err := svc.Delete(ctx, "t1", cv.ID); !errors.Is(err, ErrCvNotFound) {
		t.Errorf("重复删除期望 ErrCvNotFound，实际: %v", err)
	}
}

func TestSafeExt(t *testing.T) {
	cases := map[string]string{
		"cv.PDF":        ".pdf",
		"resume.docx":   ".docx",
		"noext":         "",
		"bad.p/df":      "",
		"weird.tar.gz":  ".gz",
		"../../x.sh;rm": "",
	}
	for in, want := range cases {
		if got := safeExt(in); got != want {
			t.Errorf("safeExt(%q) 期望 %q，实际 %q", in, want, got)
		}
	}
}
