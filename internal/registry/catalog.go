package registry

// builtin is the deployment-time theme catalog. The first entry is the
// canonical default. Ids are part of the persisted-state surface: renaming one
// orphans every stored selection that references it.
var builtin = []Theme{
	{
		ID:       "modern-minimal",
		Name:     "Modern Minimal",
		Category: CategoryMinimal,
		Palette: Palette{
			Background: "#ffffff",
			Surface:    "#f7f7f8",
			Primary:    "#18181b",
			Secondary:  "#52525b",
			Accent:     "#2563eb",
			Text:       "#18181b",
			Muted:      "#a1a1aa",
		},
		Typography: Typography{HeadingFont: "Inter", BodyFont: "Inter", BaseSizePt: 18, Scale: 1.25},
		Effects:    Effects{CornerRadiusPx: 8, Shadow: false, Gradient: false},
	},
	{
		ID:       "corporate-blue",
		Name:     "Corporate Blue",
		Category: CategoryCorporate,
		Palette: Palette{
			Background: "#ffffff",
			Surface:    "#eef2ff",
			Primary:    "#1e3a8a",
			Secondary:  "#3b82f6",
			Accent:     "#f59e0b",
			Text:       "#111827",
			Muted:      "#6b7280",
		},
		Typography: Typography{HeadingFont: "Source Sans Pro", BodyFont: "Source Sans Pro", BaseSizePt: 18, Scale: 1.2},
		Effects:    Effects{CornerRadiusPx: 4, Shadow: true, Gradient: false},
	},
	{
		ID:       "midnight-slate",
		Name:     "Midnight Slate",
		Category: CategoryDark,
		Palette: Palette{
			Background: "#0f172a",
			Surface:    "#1e293b",
			Primary:    "#e2e8f0",
			Secondary:  "#94a3b8",
			Accent:     "#38bdf8",
			Text:       "#f1f5f9",
			Muted:      "#64748b",
		},
		Typography: Typography{HeadingFont: "IBM Plex Sans", BodyFont: "IBM Plex Sans", BaseSizePt: 18, Scale: 1.25},
		Effects:    Effects{CornerRadiusPx: 12, Shadow: true, Gradient: false},
	},
	{
		ID:       "sunset-gradient",
		Name:     "Sunset Gradient",
		Category: CategoryCreative,
		Palette: Palette{
			Background: "#fff7ed",
			Surface:    "#ffedd5",
			Primary:    "#c2410c",
			Secondary:  "#ea580c",
			Accent:     "#db2777",
			Text:       "#431407",
			Muted:      "#9a3412",
		},
		Typography: Typography{HeadingFont: "Poppins", BodyFont: "Open Sans", BaseSizePt: 18, Scale: 1.3},
		Effects:    Effects{CornerRadiusPx: 16, Shadow: true, Gradient: true},
	},
	{
		ID:       "forest-calm",
		Name:     "Forest Calm",
		Category: CategoryMinimal,
		Palette: Palette{
			Background: "#f0fdf4",
			Surface:    "#dcfce7",
			Primary:    "#14532d",
			Secondary:  "#16a34a",
			Accent:     "#ca8a04",
			Text:       "#052e16",
			Muted:      "#4d7c0f",
		},
		Typography: Typography{HeadingFont: "Lora", BodyFont: "Source Sans Pro", BaseSizePt: 18, Scale: 1.25},
		Effects:    Effects{CornerRadiusPx: 8, Shadow: false, Gradient: false},
	},
	{
		ID:       "boardroom-gray",
		Name:     "Boardroom Gray",
		Category: CategoryCorporate,
		Palette: Palette{
			Background: "#fafafa",
			Surface:    "#e5e5e5",
			Primary:    "#262626",
			Secondary:  "#525252",
			Accent:     "#dc2626",
			Text:       "#171717",
			Muted:      "#737373",
		},
		Typography: Typography{HeadingFont: "Roboto", BodyFont: "Roboto", BaseSizePt: 18, Scale: 1.2},
		Effects:    Effects{CornerRadiusPx: 2, Shadow: false, Gradient: false},
	},
	{
		ID:       "neon-noir",
		Name:     "Neon Noir",
		Category: CategoryDark,
		Palette: Palette{
			Background: "#09090b",
			Surface:    "#18181b",
			Primary:    "#fafafa",
			Secondary:  "#a78bfa",
			Accent:     "#22d3ee",
			Text:       "#fafafa",
			Muted:      "#52525b",
		},
		Typography: Typography{HeadingFont: "Space Grotesk", BodyFont: "Inter", BaseSizePt: 18, Scale: 1.3},
		Effects:    Effects{CornerRadiusPx: 12, Shadow: true, Gradient: true},
	},
	{
		ID:       "paper-academic",
		Name:     "Paper Academic",
		Category: CategoryAcademic,
		Palette: Palette{
			Background: "#fffef9",
			Surface:    "#f5f5f0",
			Primary:    "#1c1917",
			Secondary:  "#78716c",
			Accent:     "#b91c1c",
			Text:       "#1c1917",
			Muted:      "#a8a29e",
		},
		Typography: Typography{HeadingFont: "Merriweather", BodyFont: "Georgia", BaseSizePt: 17, Scale: 1.2},
		Effects:    Effects{CornerRadiusPx: 0, Shadow: false, Gradient: false},
	},
	{
		ID:       "coral-pop",
		Name:     "Coral Pop",
		Category: CategoryCreative,
		Palette: Palette{
			Background: "#fff1f2",
			Surface:    "#ffe4e6",
			Primary:    "#be123c",
			Secondary:  "#fb7185",
			Accent:     "#0d9488",
			Text:       "#4c0519",
			Muted:      "#9f1239",
		},
		Typography: Typography{HeadingFont: "Nunito", BodyFont: "Nunito", BaseSizePt: 18, Scale: 1.3},
		Effects:    Effects{CornerRadiusPx: 20, Shadow: true, Gradient: false},
	},
	{
		ID:       "chalkboard",
		Name:     "Chalkboard",
		Category: CategoryAcademic,
		Palette: Palette{
			Background: "#1a2e1a",
			Surface:    "#243524",
			Primary:    "#f5f5dc",
			Secondary:  "#a3b18a",
			Accent:     "#fca311",
			Text:       "#fefae0",
			Muted:      "#6b705c",
		},
		Typography: Typography{HeadingFont: "Patrick Hand", BodyFont: "Lato", BaseSizePt: 19, Scale: 1.25},
		Effects:    Effects{CornerRadiusPx: 6, Shadow: false, Gradient: false},
	},
}
