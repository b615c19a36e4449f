package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/KrishnaBabuLaveti/Student-Project-Management/config"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/internal/services"
	"github.com/KrishnaBabuLaveti/Student-Project-Management/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// rosterRow is one parsed line of an uploaded student roster.
type rosterRow struct {
	Name       string
	Email      string
	JNTUNumber string
	Department string
	CGPA       float64
}

// UploadStudentsHandler ingests a CSV or XLSX roster, creates or updates the
// student accounts (default password = JNTU number) and forms batches from
// them with the snake draft.
func UploadStudentsHandler(c *gin.Context) {
	file, err := c.FormFile("studentData")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	academicYear := c.PostForm("academicYear")
	if academicYear == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Academic year is required"})
		return
	}
	batchSize, _ := strconv.Atoi(c.PostForm("batchSize"))

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	var rows []rosterRow
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".csv":
		rows, err = parseRosterCSV(src)
	case ".xlsx":
		rows, err = parseRosterXLSX(src)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file format. Please upload a CSV or XLSX file."})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing file: " + err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The uploaded file contains no student rows"})
		return
	}

	candidates, created, updated, err := upsertStudents(rows)
	if err != nil {
		respondError(c, err)
		return
	}

	batches, err := formationSvc.FormBatches(currentUserID(c), candidates, batchSize, academicYear)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch formation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"studentsCreated": created,
		"studentsUpdated": updated,
		"batchesCreated":  len(batches),
		"batches":         batches,
		"message":         "Default password for new students is their JNTU number",
	})
}

// upsertStudents validates each row and creates or updates the matching
// student account and profile.
func upsertStudents(rows []rosterRow) ([]services.Candidate, int, int, error) {
	var candidates []services.Candidate
	var created, updated int

	for _, row := range rows {
		if row.Name == "" || row.Email == "" || row.JNTUNumber == "" || row.Department == "" {
			return nil, 0, 0, &services.ValidationError{Msg: "invalid data format, required columns: name, email, jntuNumber, department, cgpa"}
		}
		dept := strings.ToUpper(row.Department)
		if !models.IsValidDepartment(dept) {
			return nil, 0, 0, &services.ValidationError{Msg: fmt.Sprintf("invalid department for student %s", row.Name)}
		}
		if row.CGPA < 0 || row.CGPA > 10 {
			return nil, 0, 0, &services.ValidationError{Msg: fmt.Sprintf("invalid CGPA for student %s, must be between 0 and 10", row.Name)}
		}
		if !emailPattern.MatchString(row.Email) {
			return nil, 0, 0, &services.ValidationError{Msg: fmt.Sprintf("invalid email format for student %s", row.Name)}
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(row.JNTUNumber), bcrypt.DefaultCost)
		if err != nil {
			return nil, 0, 0, err
		}

		var userID uint
		err = config.DB.Transaction(func(tx *gorm.DB) error {
			var user models.User
			findErr := tx.Where("email = ?", row.Email).First(&user).Error
			if findErr == gorm.ErrRecordNotFound {
				user = models.User{
					Name:               row.Name,
					Email:              row.Email,
					Password:           string(hashed),
					Role:               models.RoleStudent,
					MustChangePassword: true,
				}
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
				profile := models.StudentProfile{
					UserID:     user.ID,
					JNTUNumber: row.JNTUNumber,
					Department: dept,
					Branch:     dept,
					CGPA:       row.CGPA,
				}
				if err := tx.Create(&profile).Error; err != nil {
					return err
				}
				created++
			} else if findErr != nil {
				return findErr
			} else {
				user.Name = row.Name
				// Only reset the password while it is still the default.
				if user.MustChangePassword {
					user.Password = string(hashed)
				}
				if err := tx.Save(&user).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.StudentProfile{}).
					Where("user_id = ?", user.ID).
					Updates(map[string]interface{}{
						"department": dept,
						"branch":     dept,
						"cgpa":       row.CGPA,
					}).Error; err != nil {
					return err
				}
				updated++
			}
			userID = user.ID
			return nil
		})
		if err != nil {
			return nil, 0, 0, err
		}

		candidates = append(candidates, services.Candidate{
			StudentID:  userID,
			Department: dept,
			CGPA:       row.CGPA,
		})
	}
	return candidates, created, updated, nil
}

func parseRosterCSV(r io.Reader) ([]rosterRow, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return rowsFromRecords(records[0], records[1:])
}

func parseRosterXLSX(r multipart.File) ([]rosterRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return rowsFromRecords(records[0], records[1:])
}

// rowsFromRecords maps header names to columns; the expected headers are
// name, email, jntuNumber, department and cgpa, in any order.
func rowsFromRecords(header []string, records [][]string) ([]rosterRow, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "email", "jntunumber", "department", "cgpa"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	cell := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []rosterRow
	for _, record := range records {
		cgpa, err := strconv.ParseFloat(cell(record, "cgpa"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cgpa value %q", cell(record, "cgpa"))
		}
		rows = append(rows, rosterRow{
			Name:       cell(record, "name"),
			Email:      cell(record, "email"),
			JNTUNumber: cell(record, "jntunumber"),
			Department: cell(record, "department"),
			CGPA:       cgpa,
		})
	}
	return rows, nil
}
