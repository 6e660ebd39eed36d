package discount

import "time"

// Fixtures returns the static discount list, stamped with createdAt
func Fixtures(createdAt time.Time) []Record {
	fixtures := []Record{
		{
			FestivalName: "Sundance Film Festival",
			Code:         "SUNDANCE25",
			Offer:        "25% OFF submission fees",
			URL:          "https://filmfreeway.com/sundancefilmfestival",
		},
		{
			FestivalName: "SXSW Film & TV Festival",
			Code:         "SXSW20",
			Offer:        "20% OFF early deadline",
			URL:          "https://filmfreeway.com/SXSW",
		},
		{
			FestivalName: "Tribeca Festival",
			Code:         "TRIBECA15",
			Offer:        "15% OFF all categories",
			URL:          "https://filmfreeway.com/TribecaFestival",
		},
		{
			FestivalName: "Slamdance Film Festival",
			Code:         "SLAM10",
			Offer:        "$10 OFF submission",
			URL:          "https://filmfreeway.com/Slamdance",
		},
		{
			FestivalName: "Austin Film Festival",
			Code:         "AFF2025",
			Offer:        "Waived fees for students",
			URL:          "https://filmfreeway.com/AustinFilmFestival",
		},
		{
			FestivalName: "Palm Springs International ShortFest",
			Code:         "SHORTFEST20",
			Offer:        "20% OFF submission fees",
			URL:          "https://filmfreeway.com/PalmSpringsInternationalShortFest",
		},
		{
			FestivalName: "Telluride Mountainfilm",
			Code:         "MTNFILM15",
			Offer:        "15% OFF regular deadline",
			URL:          "https://filmfreeway.com/Mountainfilm",
		},
		{
			FestivalName: "Hot Docs Canadian International Documentary Festival",
			Code:         "HOTDOCS10",
			Offer:        "10% OFF submission fees",
			URL:          "https://filmfreeway.com/HotDocs",
		},
		{
			FestivalName: "Nashville Film Festival",
			Code:         "NASHFF30",
			Offer:        "30% OFF regular deadline",
			URL:          "https://filmfreeway.com/NashvilleFilmFestival",
		},
		{
			FestivalName: "Cleveland International Film Festival",
			Code:         "CIFF20",
			Offer:        "Free submission for first-time filmmakers",
			URL:          "https://filmfreeway.com/ClevelandInternationalFilmFestival",
		},
	}

	for i := range fixtures {
		fixtures[i].Source = SourceStatic
		fixtures[i].ScrapedAt = createdAt
	}
	return fixtures
}
