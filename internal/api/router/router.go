package router

import (
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
	"gorm.io/gorm"

	"resume-screener-go/internal/api/handler"
	"resume-screener-go/internal/config"
	"resume-screener-go/internal/screener"
	"resume-screener-go/internal/storage"
)

// RegisterRoutes 注册 API 路由
// 配置了 Server.APIKey 时整个 /api/v1 路由组启用 X-API-Key 鉴权
func RegisterRoutes(h *server.Hertz, cfg *config.Config, roleHandler *handler.RoleHandler, screenHandler *handler.ScreenHandler) {
	// 健康检查不走鉴权
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	// 岗位管理
	api.POST("/roles", func(c context.Context, ctx *app.RequestContext) {
		var req handler.CreateRoleRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}
		if req.Name == "" {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "岗位名称不能为空"})
			return
		}

		role, err := roleHandler.HandleCreateRole(c, &req)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, role)
	})

	api.GET("/roles", func(c context.Context, ctx *app.RequestContext) {
		roles, err := roleHandler.HandleListRoles(c)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"roles": roles})
	})

	api.GET("/roles/:role_id", func(c context.Context, ctx *app.RequestContext) {
		role, err := roleHandler.HandleGetRole(c, ctx.Param("role_id"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, role)
	})

	api.DELETE("/roles/:role_id", func(c context.Context, ctx *app.RequestContext) {
		if err := roleHandler.HandleDeleteRole(c, ctx.Param("role_id")); err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"status": "deleted"})
	})

	// 结果查询，?top_n=N 限制条数，?format=csv 导出CSV
	api.GET("/roles/:role_id/results", func(c context.Context, ctx *app.RequestContext) {
		roleID := ctx.Param("role_id")
		topN := 0
		if v := ctx.Query("top_n"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": "top_n 必须是非负整数"})
				return
			}
			topN = n
		}

		rows, err := roleHandler.HandleGetResults(c, roleID, topN)
		if err != nil {
			respondError(ctx, err)
			return
		}

		if ctx.Query("format") == "csv" {
			ctx.Response.Header.Set("Content-Type", "text/csv; charset=utf-8")
			ctx.Response.Header.Set("Content-Disposition", `attachment; filename="screening_results.csv"`)
			if err := roleHandler.WriteResultsCSV(ctx.Response.BodyWriter(), rows); err != nil {
				respondError(ctx, err)
			}
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"results": rows})
	})

	// 批量筛选
	api.POST("/screen", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ScreenRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败: " + err.Error()})
			return
		}
		if req.RoleID == "" || len(req.Documents) == 0 {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "role_id 和 documents 不能为空"})
			return
		}

		resp, err := screenHandler.HandleScreen(c, &req)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 文档上传
	api.POST("/documents/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := screenHandler.HandleDocumentUpload(c, file, fileHeader.Size, fileHeader.Filename)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 简历记录查询
	api.GET("/resumes/:resume_id", func(c context.Context, ctx *app.RequestContext) {
		resume, err := screenHandler.HandleGetResume(c, ctx.Param("resume_id"))
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resume)
	})
}

// respondError 统一错误映射：未找到类错误返回404，其余返回500
func respondError(ctx *app.RequestContext, err error) {
	status := consts.StatusInternalServerError
	if errors.Is(err, storage.ErrRoleNotFound) ||
		errors.Is(err, screener.ErrRoleNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound) {
		status = consts.StatusNotFound
	}
	ctx.JSON(status, utils.H{"error": err.Error()})
}
