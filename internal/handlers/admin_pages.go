package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/middleware"
	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/services"
	"github.com/example/unihome/internal/utils"
)

const adminLayout = "layouts/admin"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AdminPageHandler renders the admin console and handles its forms.
type AdminPageHandler struct {
	db         *gorm.DB
	auth       *middleware.Auth
	properties *services.PropertyService
	storage    *services.UploadStorage
}

// NewAdminPageHandler constructs AdminPageHandler.
func NewAdminPageHandler(db *gorm.DB, auth *middleware.Auth, storage *services.UploadStorage) *AdminPageHandler {
	return &AdminPageHandler{
		db:         db,
		auth:       auth,
		properties: services.NewPropertyService(db, storage),
		storage:    storage,
	}
}

func (h *AdminPageHandler) render(c *fiber.Ctx, name, title string, data fiber.Map) error {
	data["Title"] = title
	data["User"] = middleware.CurrentUser(c)
	data["Message"] = c.Query("message")
	return c.Render(name, data, adminLayout)
}

// LoginPage shows the console login form.
func (h *AdminPageHandler) LoginPage(c *fiber.Ctx) error {
	if user := middleware.CurrentUser(c); user != nil && user.IsAdmin {
		return c.Redirect("/admin/dashboard")
	}
	return c.Render("admin/login", fiber.Map{"Title": "管理员登录", "Username": ""})
}

// Login accepts admin credentials only.
func (h *AdminPageHandler) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	var user models.User
	err := h.db.Where("username = ?", username).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err != nil || !user.IsAdmin || !utils.CheckPassword(user.PasswordHash, password) {
		return c.Status(fiber.StatusUnauthorized).Render("admin/login", fiber.Map{
			"Title":    "管理员登录",
			"Error":    "Invalid username or password",
			"Username": username,
		})
	}

	if err := h.auth.Login(c, &user); err != nil {
		return err
	}
	return c.Redirect("/admin/dashboard")
}

// Logout ends the session and returns to the login form.
func (h *AdminPageHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c); err != nil {
		return err
	}
	return c.Redirect("/admin/login")
}

// Dashboard shows counters and the ten newest listings.
func (h *AdminPageHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := services.Dashboard(h.db)
	if err != nil {
		return err
	}

	var recent []models.Property
	if err := h.db.Scopes(services.WithPropertyRelations).Order("created_at desc, id asc").Limit(10).Find(&recent).Error; err != nil {
		return err
	}

	return h.render(c, "admin/dashboard", "控制台", fiber.Map{
		"Stats":      stats,
		"Recent":     services.SerializeProperties(recent),
		"TotalPages": (stats.TotalProperties + 9) / 10,
	})
}

// Properties lists every listing.
func (h *AdminPageHandler) Properties(c *fiber.Ctx) error {
	var properties []models.Property
	if err := h.db.Scopes(services.WithPropertyRelations).Order("created_at desc, id asc").Find(&properties).Error; err != nil {
		return err
	}

	return h.render(c, "admin/properties", "房源管理", fiber.Map{
		"Properties": services.SerializeProperties(properties),
	})
}

// NewPropertyForm shows an empty listing form.
func (h *AdminPageHandler) NewPropertyForm(c *fiber.Ctx) error {
	return h.renderForm(c, nil, "")
}

// EditPropertyForm shows the form filled from an existing listing.
func (h *AdminPageHandler) EditPropertyForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var property models.Property
	if err := h.db.Scopes(services.WithPropertyRelations).First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, services.ErrPropertyNotFound.Error())
		}
		return err
	}

	return h.renderForm(c, &property, "")
}

// CreateProperty stores a listing from the multipart form.
func (h *AdminPageHandler) CreateProperty(c *fiber.Ctx) error {
	input, uploads, err := parsePropertyForm(c)
	if err != nil {
		return h.renderForm(c, nil, err.Error())
	}

	result, err := h.properties.Create(middleware.CurrentUser(c).ID, input, uploads)
	if err != nil {
		return err
	}

	return c.Redirect("/admin/properties?message=" + url.QueryEscape(saveMessage("房源添加成功！", "上传了", result)))
}

// UpdateProperty applies the multipart form to an existing listing.
func (h *AdminPageHandler) UpdateProperty(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	input, uploads, err := parsePropertyForm(c)
	if err != nil {
		var property models.Property
		if findErr := h.db.Scopes(services.WithPropertyRelations).First(&property, id).Error; findErr != nil {
			return findErr
		}
		return h.renderForm(c, &property, err.Error())
	}

	result, err := h.properties.Update(id, input, uploads)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return c.Redirect("/admin/properties?message=" + url.QueryEscape(saveMessage("房源更新成功！", "新增了", result)))
}

// DeleteProperty removes a listing with its media.
func (h *AdminPageHandler) DeleteProperty(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.properties.Delete(id); err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Property deleted successfully"})
}

// TogglePropertyStatus flips a listing between active and inactive.
func (h *AdminPageHandler) TogglePropertyStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	status, err := h.properties.ToggleStatus(id)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "status": status})
}

// ProfilePage shows the admin's contact details.
func (h *AdminPageHandler) ProfilePage(c *fiber.Ctx) error {
	return h.render(c, "admin/profile", "个人资料", fiber.Map{})
}

// UpdateProfile saves contact details and an optional avatar, answering in JSON.
func (h *AdminPageHandler) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	updates := map[string]interface{}{
		"display_name": strings.TrimSpace(c.FormValue("display_name")),
		"phone":        strings.TrimSpace(c.FormValue("phone")),
		"wechat":       strings.TrimSpace(c.FormValue("wechat")),
		"address":      strings.TrimSpace(c.FormValue("address")),
	}

	if email := strings.TrimSpace(c.FormValue("email")); email != "" && email != user.Email {
		var count int64
		if err := h.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return c.JSON(fiber.Map{"success": false, "message": "该邮箱已被其他用户使用"})
		}
		if !emailPattern.MatchString(email) {
			return c.JSON(fiber.Map{"success": false, "message": "邮箱格式不正确"})
		}
		updates["email"] = email
	}

	var oldAvatar string
	if fh, err := c.FormFile("avatar"); err == nil && fh.Filename != "" && services.AllowedFile(fh.Filename) {
		path, err := h.storage.Save(fh)
		if err != nil {
			return err
		}
		oldAvatar = user.Avatar
		updates["avatar"] = path
	}

	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		return err
	}

	if oldAvatar != "" && oldAvatar != models.DefaultAvatar {
		h.storage.Remove(oldAvatar)
	}

	return c.JSON(fiber.Map{"success": true, "message": "资料更新成功"})
}

// LocationsPage renders the location manager; rows load from the admin API.
func (h *AdminPageHandler) LocationsPage(c *fiber.Ctx) error {
	return h.render(c, "admin/locations", "位置管理", fiber.Map{})
}

// PropertyTypesPage renders the property type manager.
func (h *AdminPageHandler) PropertyTypesPage(c *fiber.Ctx) error {
	return h.render(c, "admin/property_types", "房屋类型管理", fiber.Map{})
}

// AppointmentsPage renders the appointment manager.
func (h *AdminPageHandler) AppointmentsPage(c *fiber.Ctx) error {
	return h.render(c, "admin/appointments", "预约管理", fiber.Map{})
}

// CustomerFavoritesPage renders the favorites analytics view.
func (h *AdminPageHandler) CustomerFavoritesPage(c *fiber.Ctx) error {
	return h.render(c, "admin/customer_favorites", "客户收藏", fiber.Map{})
}

func (h *AdminPageHandler) renderForm(c *fiber.Ctx, property *models.Property, formError string) error {
	var locations []models.Location
	if err := h.db.Where("is_active = ?", true).Order("sort_order asc, name asc").Find(&locations).Error; err != nil {
		return err
	}
	var types []models.PropertyType
	if err := h.db.Where("is_active = ?", true).Order("sort_order asc, name asc").Find(&types).Error; err != nil {
		return err
	}

	data := fiber.Map{
		"Error":              formError,
		"Locations":          locations,
		"PropertyTypes":      types,
		"FacilityOptions":    services.FacilityOptions,
		"TrafficOptions":     services.TrafficOptions,
		"SurroundingOptions": services.SurroundingOptions,
		"Selected":           map[string]map[string]bool{},
		"Property":           services.PropertyRecord{Currency: models.CurrencyCAD, Status: models.StatusPending},
		"Editing":            property != nil,
		"DescJSON":           "",
		"MapValue":           "",
		"VideoValue":         "",
	}

	title := "添加房源"
	if property != nil {
		title = "编辑房源"
		record := services.SerializeProperty(property)
		data["Property"] = record
		data["Action"] = fmt.Sprintf("/admin/property/edit/%d", property.ID)

		extra := map[string]interface{}{}
		_ = json.Unmarshal(property.ExtraInfo, &extra)
		data["Selected"] = map[string]map[string]bool{
			"facilities":   services.SelectedKeys(services.FacilityOptions, extra["facilities"]),
			"traffic":      services.SelectedKeys(services.TrafficOptions, extra["traffic"]),
			"surroundings": services.SelectedKeys(services.SurroundingOptions, extra["surroundings"]),
		}
		if desc, ok := extra["desc"]; ok {
			if raw, err := json.Marshal(desc); err == nil {
				data["DescJSON"] = string(raw)
			}
		}
		data["MapValue"], _ = extra["map"].(string)
		data["VideoValue"], _ = extra["video"].(string)
	} else {
		data["Action"] = "/admin/property/add"
	}

	return h.render(c, "admin/property_form", title, data)
}

func saveMessage(prefix, verb string, result *services.SaveResult) string {
	msg := prefix
	if result.ImagesUploaded > 0 {
		msg += fmt.Sprintf(" %s %d 张图片。", verb, result.ImagesUploaded)
	}
	if result.VideosUploaded > 0 {
		msg += fmt.Sprintf(" %s %d 个视频。", verb, result.VideosUploaded)
	}
	return msg
}

// parsePropertyForm reads the listing form, multipart or urlencoded.
func parsePropertyForm(c *fiber.Ctx) (services.PropertyInput, services.Uploads, error) {
	var uploads services.Uploads
	values := func(key string) []string {
		if v := c.FormValue(key); v == "" {
			return nil
		}
		var out []string
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			if string(k) == key {
				out = append(out, string(v))
			}
		})
		return out
	}

	if form, err := c.MultipartForm(); err == nil {
		uploads.Images = nonEmptyFiles(form.File["images"])
		uploads.Videos = nonEmptyFiles(form.File["videos"])
		values = func(key string) []string {
			return form.Value[key]
		}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("price")), 64)
	if err != nil {
		return services.PropertyInput{}, uploads, errors.New("价格格式不正确")
	}

	input := services.PropertyInput{
		Name:         c.FormValue("name"),
		Description:  c.FormValue("description"),
		Location:     c.FormValue("location"),
		Country:      c.FormValue("country"),
		Address:      c.FormValue("address"),
		Price:        price,
		Currency:     c.FormValue("currency"),
		Bedrooms:     optionalInt(c.FormValue("bedrooms")),
		Bathrooms:    optionalInt(c.FormValue("bathrooms")),
		Area:         optionalFloat(c.FormValue("area")),
		PropertyType: c.FormValue("property_type"),
		Status:       c.FormValue("status"),
		Deposit:      optionalFloat(c.FormValue("deposit")),
		Utility:      c.FormValue("utility"),
		MinTerm:      c.FormValue("min_term"),
		Extra: services.ExtraInfoForm{
			Facilities:         values("facilities"),
			CustomFacilities:   c.FormValue("custom_facilities"),
			Traffic:            values("traffic"),
			CustomTraffic:      c.FormValue("custom_traffic"),
			Surroundings:       values("surroundings"),
			CustomSurroundings: c.FormValue("custom_surroundings"),
			Desc:               c.FormValue("desc"),
			Map:                c.FormValue("map"),
			Video:              c.FormValue("video"),
		},
	}

	if input.Name == "" || input.Location == "" || input.Country == "" {
		return input, uploads, errors.New("请填写房源名称、位置和国家")
	}

	return input, uploads, nil
}

func nonEmptyFiles(files []*multipart.FileHeader) []*multipart.FileHeader {
	out := make([]*multipart.FileHeader, 0, len(files))
	for _, fh := range files {
		if fh != nil && fh.Filename != "" {
			out = append(out, fh)
		}
	}
	return out
}

func optionalInt(value string) *int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &parsed
}

func optionalFloat(value string) *float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil
	}
	return &parsed
}
