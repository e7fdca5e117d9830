package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/Xushengqwer/go-common/core"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Xushengqwer/listing_service/models/entities"
	"github.com/Xushengqwer/listing_service/repo/mysql"
)

// seedCategories 是种子数据使用的分类词表。
// 词表与前端筛选栏保持一致，"全部"(Todos) 是筛选器自行追加的虚拟项，不入库。
var seedCategories = []string{
	"Muebles",
	"Hogar",
	"Electrónica",
	"Ropa",
	"Deportes",
	"Juguetes",
	"Libros",
	"Jardín",
}

// Seed 先写入分类词表，再并发生成指定数量的帖子。
// 注意：函数名 Seed 首字母大写，以便在同一个包中被 main.go 调用
func Seed(ctx context.Context, db *gorm.DB, listingRepo mysql.ListingRepository, logger *core.ZapLogger, numListings int) {
	logger.Info("开始填充测试数据 (通过仓库层)...", zap.Int("数量", numListings))

	// 1. 分类词表: name 列有唯一索引，重复执行 seeder 时跳过冲突行。
	categories := make([]entities.Category, 0, len(seedCategories))
	for _, name := range seedCategories {
		categories = append(categories, entities.Category{Name: name})
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&categories).Error; err != nil {
		logger.Error("写入分类词表失败", zap.Error(err))
	} else {
		logger.Info("分类词表已写入", zap.Int("数量", len(seedCategories)))
	}

	// 2. 帖子
	var wg sync.WaitGroup
	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for i := 0; i < numListings; i++ {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(itemIndex int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			imageCount := gofakeit.Number(1, 4)
			images := make([]string, 0, imageCount)
			for j := 0; j < imageCount; j++ {
				images = append(images, gofakeit.ImageURL(640, 480))
			}

			listing := &entities.Listing{
				Title:          gofakeit.Sentence(gofakeit.Number(3, 8)),
				Description:    gofakeit.Paragraph(2, 4, 15, "\n\n"),
				Price:          gofakeit.Price(5, 2000),
				Category:       datatypes.JSONSlice[string]{seedCategories[gofakeit.Number(0, len(seedCategories)-1)]},
				Images:         datatypes.JSONSlice[string](images),
				UserID:         uuid.New().String(),
				ShowInHomepage: gofakeit.Number(0, 9) > 0, // 约 10% 的帖子首页不可见
			}

			if err := listingRepo.CreateListing(ctx, db, listing); err != nil {
				logger.Error(fmt.Sprintf("创建帖子 %d/%d 失败", itemIndex+1, numListings),
					zap.Error(err),
					zap.String("title", listing.Title))
			} else {
				logger.Info(fmt.Sprintf("成功创建帖子 %d/%d", itemIndex+1, numListings),
					zap.Uint64("listing_id", listing.ID),
					zap.String("title", listing.Title))
			}
		}(i)
	}

	wg.Wait()
	logger.Info("测试数据填充完毕 (通过仓库层)。")
}
