package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"cetpaper/internal/exporter"
	"cetpaper/internal/model"
)

// ExportPaper 下载试卷审阅工作簿
// GET /api/papers/:id/export
func (h *Handler) ExportPaper(c *gin.Context) {
	exp := exporter.NewExporter(h.store)
	file, paper, err := exp.Export(exporter.ExportOptions{PaperID: c.Param("id")})
	if err != nil {
		h.respondError(c, "导出失败", err)
		return
	}
	defer file.Close()

	buf, err := file.WriteToBuffer()
	if err != nil {
		h.respondError(c, "写入导出文件失败", err)
		return
	}

	c.Header("Content-Disposition", buildExportContentDisposition(paper))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// buildExportContentDisposition ASCII 文件名兜底，filename* 携带中文文件名
func buildExportContentDisposition(paper *model.ExamPaper) string {
	fallback := fmt.Sprintf("%s-%04d-%02d-%d.xlsx", paper.ExamType.Slug(), paper.Year, paper.Month, paper.PaperNumber)
	encoded := strings.ReplaceAll(url.QueryEscape(exporter.FileName(paper)), "+", "%20")
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fallback, encoded)
}
