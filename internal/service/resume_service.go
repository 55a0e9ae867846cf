package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"interview_backend/internal/model"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	ResumeSourceGateway = "gateway"
	ResumeSourceLocal   = "local"
	ResumeSourceManual  = "manual"

	ManualResumeText = "PDF parsing service is not available. Please provide your information manually below."
)

var (
	resumeEmailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	resumePhonePattern = regexp.MustCompile(`(\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})|(\+?[0-9]{1,3}[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	// 长的姓名格式优先，避免 "First Middle Last" 被截成两个词
	resumeNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^([A-Z][a-z]+ [A-Z][a-z]+ [A-Z][a-z]+)`),
		regexp.MustCompile(`(?m)^([A-Z][a-z]+ [A-Z]\. [A-Z][a-z]+)`),
		regexp.MustCompile(`(?m)^([A-Z][a-z]+ [A-Z][a-z]+)`),
	}
	resumeLineNamePattern = regexp.MustCompile(`^([A-Z][a-z]+ [A-Z][a-z]+)`)
)

// ResumeUpload 简历解析结果
type ResumeUpload struct {
	model.ResumeData
	Source string `json:"source"`
}

type ResumeService struct {
	Gateway Gateway
	Storage *StorageService
}

func NewResumeService(gateway Gateway, storage *StorageService) *ResumeService {
	return &ResumeService{Gateway: gateway, Storage: storage}
}

// Parse 校验上传文件、提取联系信息并归档。优先使用网关解析；
// 失败时 DOCX 在本地提取文本，PDF 改为手动填写
func (s *ResumeService) Parse(ctx context.Context, filename string, content []byte) (*ResumeUpload, error) {
	contentType, err := validateResume(filename, content)
	if err != nil {
		return nil, err
	}

	upload := &ResumeUpload{Source: ResumeSourceGateway}
	data, err := s.Gateway.ParseResume(ctx, filename, content)
	switch {
	case err == nil && data != nil:
		upload.ResumeData = *data
	case util.IsDocx(filename):
		logger.Log.Warn("Gateway resume parsing failed, extracting locally",
			zap.String("filename", filename), zap.Error(err))
		text, xerr := ExtractDocxText(content)
		if xerr != nil {
			return nil, fmt.Errorf("%w: %v", util.ErrInvalidFileType, xerr)
		}
		upload.ResumeData = ExtractContactInfo(text)
		upload.Text = text
		upload.Source = ResumeSourceLocal
	default:
		logger.Log.Warn("Gateway resume parsing failed, asking for manual input",
			zap.String("filename", filename), zap.Error(err))
		upload.ResumeData = model.ResumeData{Text: ManualResumeText}
		upload.Source = ResumeSourceManual
	}

	if s.Storage != nil {
		url, err := s.Storage.ArchiveResume(ctx, filename, content, contentType)
		if err != nil {
			logger.Log.Warn("Failed to archive resume", zap.String("filename", filename), zap.Error(err))
		} else {
			upload.URL = url
		}
	}
	return upload, nil
}

// validateResume 校验扩展名、大小与实际内容类型，返回归档用的 Content-Type
func validateResume(filename string, content []byte) (string, error) {
	if !util.HasAllowedExtension(filename, util.AllowedResumeExtensions) {
		return "", util.ErrInvalidFileType
	}
	if len(content) > util.MaxResumeBytes {
		return "", util.ErrFileTooLarge
	}
	if len(content) == 0 {
		return "", util.ErrInvalidFileType
	}
	detected, err := util.ValidateMimeType(bytes.NewReader(content), util.ResumeMimeTypes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrInvalidFileType, err)
	}
	if util.IsDocx(filename) {
		if !strings.HasPrefix(detected, util.MimeZip) {
			return "", util.ErrInvalidFileType
		}
		return util.MimeDocx, nil
	}
	if !strings.HasPrefix(detected, util.MimePDF) {
		return "", util.ErrInvalidFileType
	}
	return util.MimePDF, nil
}

// ExtractContactInfo 取第一个邮箱、电话和像姓名的行
func ExtractContactInfo(text string) model.ResumeData {
	var data model.ResumeData
	data.Email = resumeEmailPattern.FindString(text)
	data.Phone = resumePhonePattern.FindString(text)

	for _, p := range resumeNamePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			data.Name = m[1]
			return data
		}
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(line) >= 50 {
			continue
		}
		if m := resumeLineNamePattern.FindStringSubmatch(line); m != nil {
			data.Name = m[1]
			break
		}
	}
	return data
}

// ExtractDocxText 返回 word/document.xml 的纯文本，每段一行
func ExtractDocxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("word/document.xml not found")
	}
	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
