package dialog

// NoticeURL is the license home page linked from the notice text.
const NoticeURL = "https://www.gnu.org/licenses/"

// Notice is the text shown in the license dialog.
const Notice = "AlwaysMute keeps the default audio output device quiet\n" +
	"Copyright (C) 2026 the AlwaysMute authors\n\n" +
	"AlwaysMute is free software: you can redistribute it and/or modify\n" +
	"it under the terms of the GNU General Public License as published by\n" +
	"the Free Software Foundation, version 3.\n\n" +
	"AlwaysMute is distributed in the hope that it will be useful,\n" +
	"but WITHOUT ANY WARRANTY; without even the implied warranty of\n" +
	"MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the\n" +
	"GNU General Public License for more details.\n\n" +
	"You should have received a copy of the GNU General Public License\n" +
	"along with AlwaysMute. If not, see <" + NoticeURL + ">."
