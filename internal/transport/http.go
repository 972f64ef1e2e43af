package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/authz"
	"github.com/crewlog/crewlog/internal/domain/comment"
	"github.com/crewlog/crewlog/internal/domain/file"
	"github.com/crewlog/crewlog/internal/domain/group"
	"github.com/crewlog/crewlog/internal/domain/project"
	"github.com/crewlog/crewlog/internal/domain/task"
)

// Services bundles the domain services the HTTP layer exposes.
type Services struct {
	Projects *project.Service
	Groups   *group.Service
	Tasks    *task.Service
	Comments *comment.Service
	Files    *file.Service
	Activity *activity.Service
}

// Server wires HTTP handlers around the domain services.
type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter creates the HTTP router with authentication middleware.
func NewRouter(svc Services, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", srv.handleCreateProject)
			r.Get("/", srv.handleListProjects)
			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", srv.handleGetProject)
				r.Patch("/", srv.handleUpdateProject)
				r.Delete("/", srv.handleDeleteProject)
				r.Get("/activity", srv.handleProjectActivity)
				r.Get("/members", srv.handleListMembers)
				r.Post("/members", srv.handleAddMember)
				r.Patch("/members/{userID}", srv.handleChangeRole)
				r.Delete("/members/{userID}", srv.handleRemoveMember)
				r.Post("/groups", srv.handleCreateGroup)
				r.Get("/groups", srv.handleListGroups)
				r.Post("/tasks", srv.handleCreateTask)
				r.Get("/tasks", srv.handleListTasks)
			})
		})

		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Get("/", srv.handleGetGroup)
			r.Patch("/", srv.handleUpdateGroup)
			r.Delete("/", srv.handleDeleteGroup)
			r.Get("/members", srv.handleListGroupMembers)
			r.Post("/members", srv.handleAddGroupMember)
			r.Delete("/members/{userID}", srv.handleRemoveGroupMember)
		})

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Get("/", srv.handleGetTask)
			r.Patch("/", srv.handleUpdateTask)
			r.Delete("/", srv.handleDeleteTask)
			r.Get("/activity", srv.handleTaskActivity)
			r.Post("/comments", srv.handleCreateComment)
			r.Get("/comments", srv.handleListComments)
			r.Post("/files", srv.handleAttachFile)
			r.Get("/files", srv.handleListFiles)
		})

		r.Patch("/comments/{commentID}", srv.handleUpdateComment)
		r.Delete("/comments/{commentID}", srv.handleDeleteComment)
		r.Delete("/files/{fileID}", srv.handleDetachFile)

		r.Get("/activity", srv.handleUserActivity)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) actor(r *http.Request) string {
	userID, _ := UserFromContext(r.Context())
	return userID
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// --- projects ---

type projectRequest struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	StartDate    *time.Time      `json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`
	Status       *project.Status `json:"status"`
	AutoSchedule *bool           `json:"auto_schedule"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	create := project.CreateRequest{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Name != nil {
		create.Name = *req.Name
	}
	if req.Description != nil {
		create.Description = *req.Description
	}
	if req.Status != nil {
		create.Status = *req.Status
	}
	if req.AutoSchedule != nil {
		create.AutoSchedule = *req.AutoSchedule
	}

	proj, err := s.svc.Projects.Create(r.Context(), s.actor(r), create)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.Projects.List(r.Context(), s.actor(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.svc.Projects.Get(r.Context(), s.actor(r), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	proj, err := s.svc.Projects.Update(r.Context(), s.actor(r), chi.URLParam(r, "projectID"), project.UpdateRequest{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       req.Status,
		AutoSchedule: req.AutoSchedule,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.Delete(r.Context(), s.actor(r), chi.URLParam(r, "projectID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- members ---

type memberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Projects.ListMembers(r.Context(), s.actor(r), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	m, err := s.svc.Projects.AddMember(r.Context(), s.actor(r), chi.URLParam(r, "projectID"), req.Email, role)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	m, err := s.svc.Projects.ChangeRole(r.Context(), s.actor(r),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"), role)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Projects.RemoveMember(r.Context(), s.actor(r),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- groups ---

type groupRequest struct {
	Name   *string `json:"name"`
	Color  *string `json:"color"`
	UserID string  `json:"user_id"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	create := group.CreateRequest{}
	if req.Name != nil {
		create.Name = *req.Name
	}
	if req.Color != nil {
		create.Color = *req.Color
	}

	g, err := s.svc.Groups.Create(r.Context(), s.actor(r), chi.URLParam(r, "projectID"), create)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.svc.Groups.ListByProject(r.Context(), s.actor(r), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Groups.Get(r.Context(), s.actor(r), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	g, err := s.svc.Groups.Update(r.Context(), s.actor(r), chi.URLParam(r, "groupID"), group.UpdateRequest{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Groups.Delete(r.Context(), s.actor(r), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Groups.ListMembers(r.Context(), s.actor(r), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddGroupMember(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	gm, err := s.svc.Groups.AddMember(r.Context(), s.actor(r), chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, gm)
}

func (s *Server) handleRemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Groups.RemoveMember(r.Context(), s.actor(r),
		chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- tasks ---

type taskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *task.Status `json:"status"`
	AssigneeID  *string      `json:"assignee_id"`
	GroupID     *string      `json:"group_id"`
	DueDate     *time.Time   `json:"due_date"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	create := task.CreateRequest{
		AssigneeID: req.AssigneeID,
		GroupID:    req.GroupID,
		DueDate:    req.DueDate,
	}
	if req.Title != nil {
		create.Title = *req.Title
	}
	if req.Description != nil {
		create.Description = *req.Description
	}
	if req.Status != nil {
		create.Status = *req.Status
	}

	t, err := s.svc.Tasks.Create(r.Context(), s.actor(r), chi.URLParam(r, "projectID"), create)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Tasks.ListByProject(r.Context(), s.actor(r), chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Tasks.Get(r.Context(), s.actor(r), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	t, err := s.svc.Tasks.Update(r.Context(), s.actor(r), chi.URLParam(r, "taskID"), task.UpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		GroupID:     req.GroupID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tasks.Delete(r.Context(), s.actor(r), chi.URLParam(r, "taskID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- comments ---

type commentRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	c, err := s.svc.Comments.Create(r.Context(), s.actor(r), chi.URLParam(r, "taskID"), req.Body)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.svc.Comments.ListByTask(r.Context(), s.actor(r), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	c, err := s.svc.Comments.Update(r.Context(), s.actor(r), chi.URLParam(r, "commentID"), req.Body)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Comments.Delete(r.Context(), s.actor(r), chi.URLParam(r, "commentID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- files ---

type fileRequest struct {
	FileName    string `json:"file_name"`
	StoragePath string `json:"storage_path"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
}

func (s *Server) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	a, err := s.svc.Files.Attach(r.Context(), s.actor(r), chi.URLParam(r, "taskID"), file.AttachRequest{
		FileName:    req.FileName,
		StoragePath: req.StoragePath,
		SizeBytes:   req.SizeBytes,
		ContentType: req.ContentType,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.svc.Files.ListByTask(r.Context(), s.actor(r), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleDetachFile(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Files.Detach(r.Context(), s.actor(r), chi.URLParam(r, "fileID")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- activity ---

type activityPage struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}

func (s *Server) handleProjectActivity(w http.ResponseWriter, r *http.Request) {
	opts := activity.ListOptions{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if v := r.URL.Query().Get("entity_type"); v != "" {
		et := activity.EntityType(v)
		opts.EntityType = &et
	}
	if v := r.URL.Query().Get("action"); v != "" {
		a := activity.Action(v)
		opts.Action = &a
	}
	if v := r.URL.Query().Get("actor_id"); v != "" {
		opts.ActorID = &v
	}

	entries, total, err := s.svc.Activity.QueryProjectActivity(r.Context(),
		chi.URLParam(r, "projectID"), s.actor(r), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, activityPage{Entries: entries, Total: total})
}

func (s *Server) handleTaskActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Activity.QueryTaskActivity(r.Context(),
		chi.URLParam(r, "taskID"), s.actor(r), queryInt(r, "limit"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUserActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Activity.QueryUserActivity(r.Context(), s.actor(r), queryInt(r, "limit"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
