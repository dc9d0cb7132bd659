package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"campus-admin/internal/repository"
	"campus-admin/internal/utils"
)

type StudentHandler struct {
	studentRepo *repository.StudentRepository
}

func NewStudentHandler(studentRepo *repository.StudentRepository) *StudentHandler {
	return &StudentHandler{studentRepo: studentRepo}
}

func (h *StudentHandler) GetStudents(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	students, total, err := h.studentRepo.GetStudents(params.Limit, offset, params.Search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve students", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Students retrieved successfully", fiber.Map{
		"students": students,
	}, pagination)
}

func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid student ID", err)
	}

	student, err := h.studentRepo.GetByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Student not found", err)
	}

	return utils.SuccessResponse(c, "Student retrieved successfully", student)
}
