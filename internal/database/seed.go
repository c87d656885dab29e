package database

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

const torontoMap = "https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d2886.2008271359426!2d-79.39939548450163!3d43.66098397912126!2m3!1f0!2f0!3f0!3m2!1i1024!2i768!4f13.1!3m3!1m2!1s0x882b34b8a4000001%3A0x50fea143d86f2d30!2sUniversity%20of%20Toronto!5e0!3m2!1sen!2sca!4v1620927112519!5m2!1sen!2sca"

// SeedOptions controls bootstrap data.
type SeedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	DemoData      bool
}

type icon map[string]string

type demoListing struct {
	property models.Property
	image    string
	content  map[string]interface{}
}

// Seed creates the admin account, default reference data and, when the property
// table is empty, the demo listings.
func Seed(conn *gorm.DB, opts SeedOptions) error {
	admin, err := ensureAdmin(conn, opts)
	if err != nil {
		return err
	}

	if err := seedReferenceData(conn); err != nil {
		return err
	}

	if !opts.DemoData {
		return nil
	}

	var count int64
	if err := conn.Model(&models.Property{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		for _, item := range demoListings() {
			property := item.property
			property.UserID = admin.ID
			property.Status = models.StatusActive
			property.Rent = floatPtr(property.Price)
			property.Deposit = floatPtr(property.Price)
			property.Utility = "包含"

			content, err := json.Marshal(item.content)
			if err != nil {
				return err
			}
			property.SeedContent = datatypes.JSON(content)
			property.Images = []models.PropertyImage{{Path: "static/images/" + item.image}}

			if err := tx.Create(&property).Error; err != nil {
				return err
			}
		}
		log.Printf("seeded %d demo listings", len(demoListings()))
		return nil
	})
}

func ensureAdmin(conn *gorm.DB, opts SeedOptions) (*models.User, error) {
	var admin models.User
	err := conn.Where("username = ?", opts.AdminUsername).First(&admin).Error
	if err == nil {
		return &admin, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := utils.HashPassword(opts.AdminPassword)
	if err != nil {
		return nil, err
	}

	admin = models.User{
		Username:      opts.AdminUsername,
		Email:         opts.AdminEmail,
		PasswordHash:  hash,
		IsAdmin:       true,
		EmailVerified: true,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return nil, err
	}
	log.Printf("created admin account %q", admin.Username)
	return &admin, nil
}

func seedReferenceData(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Location{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		locations := []models.Location{
			{Name: "多伦多", Country: "Canada", DisplayName: "多伦多 (Canada)", IsActive: true, SortOrder: 1},
			{Name: "温哥华", Country: "Canada", DisplayName: "温哥华 (Canada)", IsActive: true, SortOrder: 2},
			{Name: "北京", Country: "China", DisplayName: "北京 (China)", IsActive: true, SortOrder: 3},
			{Name: "上海", Country: "China", DisplayName: "上海 (China)", IsActive: true, SortOrder: 4},
		}
		if err := conn.Create(&locations).Error; err != nil {
			return err
		}
	}

	if err := conn.Model(&models.PropertyType{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		types := []models.PropertyType{
			{Name: "整套公寓", Description: "独立完整的公寓", IsActive: true, SortOrder: 1},
			{Name: "合租房间", Description: "与他人合租的房间", IsActive: true, SortOrder: 2},
			{Name: "学生宿舍", Description: "面向学生的宿舍", IsActive: true, SortOrder: 3},
		}
		if err := conn.Create(&types).Error; err != nil {
			return err
		}
	}

	return nil
}

func demoListings() []demoListing {
	return []demoListing{
		{
			property: models.Property{
				Name: "现代学生公寓", Description: "位于多伦多市中心，步行5分钟到多伦多大学，设施齐全，安全舒适。",
				Location: "多伦多", Country: "Canada", Address: "多伦多市中心，距离多伦多大学5分钟",
				Price: 750, Currency: models.CurrencyCAD, Bedrooms: intPtr(2), Bathrooms: intPtr(1), Area: floatPtr(60),
				PropertyType: "整套公寓", MinTerm: "4个月",
			},
			image: "ic_e_a.png",
			content: map[string]interface{}{
				"landlord": map[string]string{
					"name": "UniHome 管理员", "avatar": models.DefaultAvatar,
					"phone": "+1 (123) 456-7890", "email": "admin@unihome.com", "wechat": "UniHome_Admin",
				},
				"desc": []string{
					"这套现代化的学生公寓位于多伦多市中心，步行5分钟即可到达多伦多大学主校区。",
					"公寓共有2个卧室，1个卫生间，开放式厨房和宽敞的客厅区域。",
				},
				"facilities": []icon{
					{"icon": "fa-wifi", "label": "免费WiFi"},
					{"icon": "fa-temperature-low", "label": "空调"},
					{"icon": "fa-utensils", "label": "设备齐全的厨房"},
					{"icon": "fa-dumbbell", "label": "健身房"},
					{"icon": "fa-shield-alt", "label": "24小时安保"},
				},
				"traffic": []icon{
					{"icon": "fa-subway", "label": "最近地铁站：Queen's Park Station (步行3分钟)"},
					{"icon": "fa-bus", "label": "公交站：College Street at University Avenue (步行2分钟)"},
				},
				"surroundings": []icon{
					{"icon": "fa-shopping-basket", "label": "超市：Loblaws (步行7分钟)"},
					{"icon": "fa-book", "label": "图书馆：Robarts Library (步行8分钟)"},
				},
				"map":   torontoMap,
				"video": "https://www.youtube.com/embed/dQw4w9WgXcQ",
			},
		},
		{
			property: models.Property{
				Name: "海淀区豪华学生公寓", Description: "靠近清华大学，交通便利，配备独立卫浴和厨房。",
				Location: "北京", Country: "China", Address: "北京海淀区，距离清华大学10分钟",
				Price: 3500, Currency: models.CurrencyCNY, Bedrooms: intPtr(1), Bathrooms: intPtr(1), Area: floatPtr(35),
				PropertyType: "学生宿舍", MinTerm: "6个月",
			},
			image: "ic_e_b.png",
			content: map[string]interface{}{
				"landlord": map[string]string{
					"name": "北京管理员", "avatar": models.DefaultAvatar,
					"phone": "+86 123 4567 8901", "email": "admin@unihome.com", "wechat": "Beijing_Admin",
				},
				"desc": []string{
					"豪华学生公寓，靠近清华大学，交通便利，生活配套齐全。",
					"配备独立卫浴、厨房、学习区，适合高端留学生入住。",
				},
				"facilities": []icon{
					{"icon": "fa-wifi", "label": "免费WiFi"},
					{"icon": "fa-temperature-low", "label": "空调"},
					{"icon": "fa-shield-alt", "label": "24小时安保"},
				},
				"traffic": []icon{
					{"icon": "fa-subway", "label": "地铁站：五道口 (步行5分钟)"},
				},
				"surroundings": []icon{
					{"icon": "fa-shopping-basket", "label": "超市：物美 (步行8分钟)"},
				},
			},
		},
		{
			property: models.Property{
				Name: "市中心现代公寓", Description: "温哥华市中心，靠近UBC，拎包入住。",
				Location: "温哥华", Country: "Canada", Address: "温哥华市中心，靠近UBC",
				Price: 850, Currency: models.CurrencyCAD, Bedrooms: intPtr(1), Bathrooms: intPtr(1), Area: floatPtr(40),
				PropertyType: "整套公寓", MinTerm: "3个月",
			},
			image: "ic_e_c.png",
			content: map[string]interface{}{
				"traffic":      []icon{{"icon": "fa-bus", "label": "公交站：UBC Exchange (步行2分钟)"}},
				"surroundings": []icon{{"icon": "fa-shopping-basket", "label": "超市：Save-On-Foods (步行10分钟)"}},
			},
		},
		{
			property: models.Property{
				Name: "浦东新区精品公寓", Description: "靠近上海交通大学，生活便利，环境优美。",
				Location: "上海", Country: "China", Address: "上海浦东新区，靠近上海交通大学",
				Price: 4200, Currency: models.CurrencyCNY, Bedrooms: intPtr(2), Bathrooms: intPtr(1), Area: floatPtr(55),
				PropertyType: "合租房间", MinTerm: "5个月",
			},
			image: "ic_e_d.png",
			content: map[string]interface{}{
				"traffic":      []icon{{"icon": "fa-bus", "label": "公交站：交大站 (步行3分钟)"}},
				"surroundings": []icon{{"icon": "fa-shopping-basket", "label": "超市：家乐福 (步行8分钟)"}},
			},
		},
		{
			property: models.Property{
				Name: "经济型学生宿舍", Description: "多伦多北约克区，靠近约克大学，适合预算有限的留学生。",
				Location: "多伦多", Country: "Canada", Address: "多伦多北约克区，靠近约克大学",
				Price: 550, Currency: models.CurrencyCAD, Bedrooms: intPtr(1), Bathrooms: intPtr(1), Area: floatPtr(20),
				PropertyType: "学生宿舍", MinTerm: "2个月",
			},
			image: "ic_e_e.png",
			content: map[string]interface{}{
				"traffic":      []icon{{"icon": "fa-bus", "label": "公交站：约克大学站 (步行2分钟)"}},
				"surroundings": []icon{{"icon": "fa-shopping-basket", "label": "超市：No Frills (步行10分钟)"}},
			},
		},
		{
			property: models.Property{
				Name: "中关村环绕式公寓", Description: "北京中关村，靠近北京大学，学习氛围浓厚。",
				Location: "北京", Country: "China", Address: "北京中关村，靠近北京大学",
				Price: 2800, Currency: models.CurrencyCNY, Bedrooms: intPtr(1), Bathrooms: intPtr(1), Area: floatPtr(25),
				PropertyType: "学生宿舍", MinTerm: "3个月",
			},
			image: "ic_e_f.png",
			content: map[string]interface{}{
				"traffic":      []icon{{"icon": "fa-bus", "label": "公交站：北京大学东门 (步行2分钟)"}},
				"surroundings": []icon{{"icon": "fa-shopping-basket", "label": "超市：物美 (步行10分钟)"}},
			},
		},
	}
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
