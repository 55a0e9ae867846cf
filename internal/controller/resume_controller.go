package controller

import (
	"errors"
	"io"
	"net/http"

	"interview_backend/internal/service"
	"interview_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResumeController struct {
	ResumeService *service.ResumeService
}

func NewResumeController(resumeService *service.ResumeService) *ResumeController {
	return &ResumeController{ResumeService: resumeService}
}

// Upload godoc
// @Summary 上传并解析简历
// @Description 支持 PDF 与 DOCX，最大 10MB；解析服务不可用时 DOCX 在本地提取，PDF 需手动填写
// @Tags 简历
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "简历文件"
// @Success 200 {object} util.Response{data=service.ResumeUpload}
// @Failure 400 {object} util.Response "文件类型或大小不合法"
// @Router /api/resume/upload [post]
func (c *ResumeController) Upload(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, util.MaxResumeBytes+1<<20)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "No file uploaded")
		return
	}
	if fileHeader.Size > util.MaxResumeBytes {
		util.BadRequest(ctx, util.ErrFileTooLarge.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	upload, err := c.ResumeService.Parse(ctx.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		if errors.Is(err, util.ErrInvalidFileType) || errors.Is(err, util.ErrFileTooLarge) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, upload)
}
